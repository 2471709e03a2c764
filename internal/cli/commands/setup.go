package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/roastery/internal/cli/config"
	"github.com/leapstack-labs/roastery/internal/cli/output"
	"github.com/leapstack-labs/roastery/internal/report"
	"github.com/leapstack-labs/roastery/internal/store"
	"github.com/spf13/cobra"

	// Register store adapters and report engines for every dialect.
	_ "github.com/leapstack-labs/roastery/internal/report/mysql"
	_ "github.com/leapstack-labs/roastery/internal/report/postgres"
	_ "github.com/leapstack-labs/roastery/internal/report/sqlite"
	_ "github.com/leapstack-labs/roastery/pkg/adapters/mysql"
	_ "github.com/leapstack-labs/roastery/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/roastery/pkg/adapters/sqlite"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the config, logger and renderer for cmd.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

// OpenStore connects to the configured database.
func (c *CommandContext) OpenStore(ctx context.Context) (*store.Store, error) {
	s, err := store.Open(ctx, c.Cfg.DatabaseURL, nil, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return s, nil
}

// OpenReader connects to the configured database and selects its report engine.
func (c *CommandContext) OpenReader(ctx context.Context) (*report.Reader, error) {
	return report.Open(ctx, c.Cfg.DatabaseURL, report.WithLogger(c.Logger))
}

// getConfig returns the loaded configuration, or the defaults when a command
// runs outside the root command.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Defaults()
}
