package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "apply",
		Short: "Create the coffee-shop tables if they do not exist",
		Long: `Create the fixed coffee-shop schema in the configured database.

Applying the schema twice is a no-op.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)

			s, err := cc.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			if err := s.ApplySchema(cmd.Context()); err != nil {
				return err
			}
			cc.Renderer.Success(fmt.Sprintf("Schema applied (%s, %d tables)",
				s.Dialect().Kind, len(s.Schema().Entities())))
			return nil
		},
	})

	return cmd
}
