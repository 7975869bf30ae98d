package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Fepozopo/lunaratelier/pkg/auth"
	"github.com/Fepozopo/lunaratelier/pkg/imagesrc"
	"github.com/Fepozopo/lunaratelier/pkg/server"
	"github.com/Fepozopo/lunaratelier/pkg/store"
)

func (a *app) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides PORT)")
	return cmd
}

func (a *app) serve(ctx context.Context, addr string) error {
	cfg := a.cfg
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if addr == "" {
		addr = cfg.Addr()
	}
	if cfg.UsingDefaultSecret() {
		a.log.Warn("JWT_SECRET is not set; using the default secret")
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}

	st, err := store.Open(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	srv, err := server.New(server.Options{
		Addr:           addr,
		Store:          st,
		Issuer:         issuer,
		Loader:         imagesrc.NewLoader(cfg.Images.FetchTimeout, cfg.Server.MaxBodyBytes).WithMaxPixels(cfg.Images.MaxPixels),
		Catalog:        catalog,
		Logger:         a.log,
		AllowedOrigins: cfg.Server.FrontendURLs,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,

		AllowPrivateNetworks: cfg.Images.AllowPrivateNetworks,
	})
	if err != nil {
		return err
	}
	a.log.Info("starting lunar",
		zap.String("addr", addr),
		zap.String("database", st.Path()),
		zap.Strings("origins", cfg.Server.FrontendURLs),
		zap.String("version", Version),
	)
	return srv.Run(ctx)
}
