package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/roastery/internal/api"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reports over HTTP",
		Long: `Serve the sales reports as JSON:

  GET /customers/birthday[?date=YYYY-MM-DD]
  GET /products/top-selling-products/{year}
  GET /customers/last-order-per-customer

The server stops gracefully on SIGINT or SIGTERM.`,
		Example: `  roastery serve --addr :8000 --database-url postgres://app@localhost/shop`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rd, err := cc.OpenReader(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = rd.Close() }()

			srv := api.NewServer(api.Config{
				Addr:            cc.Cfg.HTTP.Addr,
				Reports:         rd,
				ShutdownTimeout: cc.Cfg.HTTP.ShutdownTimeout,
				Logger:          cc.Logger,
			})
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default :8000)")
	cmd.Flags().Duration("shutdown-timeout", 0, "Graceful shutdown timeout (default 5s)")

	return cmd
}
