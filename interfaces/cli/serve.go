package cli

import (
	"context"
	"os/signal"
	"syscall"

	"slidecanvas/infrastructure/config"
	"slidecanvas/infrastructure/di"
	"slidecanvas/interfaces/http/rest"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) serveCommand() *cobra.Command {
	var (
		addr  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, loader, err := a.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Address = addr
			}
			container, cleanup, err := di.InitializeContainer(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if watch || cfg.IsDevelopment() {
				startWatcher(ctx, loader, container)
			}
			return rest.NewServer(container).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overriding server.address")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload configuration files on change (always on in development)")
	return cmd
}

// startWatcher reloads configuration files in the background and applies
// valid changes to the running container.
func startWatcher(ctx context.Context, loader *config.Loader, container *di.Container) {
	watcher := config.NewWatcher(loader, container.Config, container.Logger.Named("config"))
	watcher.OnChange(container.ApplyConfig)
	go func() {
		if err := watcher.Run(ctx); err != nil {
			container.Logger.Warn("Configuration watcher stopped", zap.Error(err))
		}
	}()
}
