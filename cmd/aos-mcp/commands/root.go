package commands

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/unicef-drp/Ahead-of-the-Storm/internal/config"
	"github.com/unicef-drp/Ahead-of-the-Storm/internal/engine"
	"github.com/unicef-drp/Ahead-of-the-Storm/internal/logging"
	"github.com/unicef-drp/Ahead-of-the-Storm/internal/mcp"
	"github.com/unicef-drp/Ahead-of-the-Storm/internal/observability"
	"github.com/unicef-drp/Ahead-of-the-Storm/internal/store"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig

	impactStore store.Store
)

var rootCmd = &cobra.Command{
	Use:   "aos-mcp",
	Short: "AOS-MCP is a hurricane impact analysis MCP server",
	Long: `A specialized MCP Server exposing Ahead of the Storm impact analytics:
expected and worst-case impact aggregation, ensemble distribution statistics,
risk classification and forecast-over-forecast trend comparison.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		impactStore, err = openStore(cfg)
		if err != nil {
			return err
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("store", cfg.StoreBackend).
			Msg("AOS-MCP starting")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		defer impactStore.Close()

		var metrics *observability.Metrics
		if cfg.MetricsAddr != "" {
			metrics = observability.NewMetrics()
			srv := observability.NewServer(cfg.MetricsAddr)
			srv.Start()
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(ctx)
			}()
		}

		eng := engine.New(impactStore,
			engine.WithZoom(cfg.Zoom),
			engine.WithMetrics(metrics),
		)

		log.Info().Msg("MCP Server starting Stdio loop")
		mcp.Version = Version
		server := mcp.NewServer(eng)
		return server.Serve(cmd.Context())
	},
}

func openStore(cfg *config.AppConfig) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		return store.NewPostgres(context.Background(), cfg.PostgresDSN, cfg.QueryTimeout)
	default:
		return store.NewFileStore(cfg.ViewsDir)
	}
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}
