package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"uniform-store/internal/app"
	"uniform-store/internal/config"
)

// Opener opens the application service for one command invocation.
type Opener func(ctx context.Context) (app.ApplicationService, error)

// runtime carries what every subcommand needs.
type runtime struct {
	cfg        *config.Config
	logger     *zap.Logger
	open       Opener
	svc        app.ApplicationService
	jsonOutput bool
}

// service opens the application service on first use.
func (rt *runtime) service(ctx context.Context) (app.ApplicationService, error) {
	if rt.svc != nil {
		return rt.svc, nil
	}
	svc, err := rt.open(ctx)
	if err != nil {
		return nil, err
	}
	rt.svc = svc
	return svc, nil
}

func (rt *runtime) close() {
	if rt.svc == nil {
		return
	}
	if err := rt.svc.Close(); err != nil {
		rt.logger.Warn("failed to close store", zap.Error(err))
	}
	rt.svc = nil
}

// NewRootCmd builds the command tree. open is called lazily by commands that need the store.
func NewRootCmd(cfg *config.Config, logger *zap.Logger, open Opener) *cobra.Command {
	if logger == nil {
		logger = zap.NewNop()
	}
	rt := &runtime{cfg: cfg, logger: logger, open: open}

	root := &cobra.Command{
		Use:   "uniforms",
		Short: "School uniform shop: orders, stock and reports",
		Long: `uniforms manages the order lifecycle and stock of a school uniform shop.

Stock is reserved when an order is placed and returned to the shelf when the
order is cancelled or deleted. Every change is recorded as a stock movement.`,
		SilenceUsage: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			rt.close()
		},
	}
	root.PersistentFlags().BoolVar(&rt.jsonOutput, "json", false, "Output in JSON format")

	root.AddCommand(
		newMigrateCmd(rt),
		newSeedCmd(rt),
		newOrderCmd(rt),
		newStockCmd(rt),
		newReportCmd(rt),
	)
	return root
}

// Execute runs the root command, printing errors to stderr and exiting non-zero on failure.
func Execute(cfg *config.Config, logger *zap.Logger, open Opener) {
	if err := NewRootCmd(cfg, logger, open).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ ")+err.Error())
		os.Exit(1)
	}
}

func newMigrateCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database schema up to date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Migrate(cmd.Context(), rt.cfg, rt.logger); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "schema is up to date (%s)", rt.cfg.Driver)
			return nil
		},
	}
}

func newSeedCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default schools and a demo catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := rt.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.Seed(cmd.Context())
			if err != nil {
				return err
			}
			if rt.jsonOutput {
				return printJSON(cmd.OutOrStdout(), res)
			}
			success(cmd.OutOrStdout(), "seeded %d schools and %d products", res.SchoolsCreated, res.ProductsCreated)
			return nil
		},
	}
}
