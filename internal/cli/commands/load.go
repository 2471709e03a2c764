package commands

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/roastery/internal/cli/output"
	"github.com/leapstack-labs/roastery/internal/loader"
	"github.com/leapstack-labs/roastery/internal/mapping"
	"github.com/spf13/cobra"
)

// NewLoadCommand creates the load command.
func NewLoadCommand() *cobra.Command {
	var skipSchema bool

	cmd := &cobra.Command{
		Use:   "load [archive]",
		Short: "Load a zip archive of CSV exports into the database",
		Long: `Load every CSV member named by the mapping table into the database.

Each row is inserted and committed on its own. A row that fails to map or
insert is logged and skipped; a rule whose member is missing or malformed is
logged and skipped. Only an archive that cannot be opened stops the load.

The schema is applied first unless --skip-schema is given.`,
		Example: `  # Load data.zip into the configured database
  roastery load

  # Load another archive into a local SQLite file
  roastery load exports/2019.zip --database-url sqlite:///shop.db

  # Use a custom mapping table
  roastery load --mapping mapping.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, args, skipSchema)
		},
	}

	cmd.Flags().String("mapping", "", "Mapping table YAML (default: built-in coffee-shop table)")
	cmd.Flags().BoolVar(&skipSchema, "skip-schema", false, "Do not create missing tables before loading")

	return cmd
}

func runLoad(cmd *cobra.Command, args []string, skipSchema bool) error {
	cc := NewCommandContext(cmd)
	ctx := cmd.Context()

	path := cc.Cfg.Archive
	if len(args) == 1 {
		path = args[0]
	}

	rules, err := mapping.Resolve(cc.Cfg.Mapping)
	if err != nil {
		return err
	}

	s, err := cc.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if !skipSchema {
		if err := s.ApplySchema(ctx); err != nil {
			return err
		}
	}

	eng, err := loader.New(loader.Config{
		Rows:   s,
		Rules:  rules,
		Logger: cc.Logger,
	})
	if err != nil {
		return err
	}

	sum, err := eng.Run(ctx, path)
	if sum != nil {
		if rerr := renderSummary(cc.Renderer, sum); rerr != nil {
			return rerr
		}
	}
	return err
}

func renderSummary(r *output.Renderer, sum *loader.Summary) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(sum)
	}

	r.Header(1, "Load summary")
	if r.EffectiveMode() == output.ModeMarkdown {
		r.Println(output.FormatKeyValue("Run", sum.RunID))
		r.Println(output.FormatKeyValue("Archive", sum.Archive))
		r.Println(output.FormatKeyValue("Duration", sum.Duration.String()))
		r.Println("")
	}

	rows := make([][]any, 0, len(sum.Files))
	for _, f := range sum.Files {
		status := "ok"
		if f.Skipped {
			status = "skipped: " + f.Reason
		}
		rows = append(rows, []any{f.SourceFile, string(f.Entity), f.Loaded, f.Failed, status})
	}
	r.Table([]string{"file", "entity", "loaded", "failed", "status"}, rows)

	msg := fmt.Sprintf("Loaded %d rows in %s (%d failed, %d files skipped)",
		sum.Loaded(), sum.Duration.Round(time.Millisecond), sum.Failed(), sum.Skipped())
	if sum.Failed() > 0 || sum.Skipped() > 0 {
		r.Warn(msg)
	} else {
		r.Success(msg)
	}
	return nil
}
