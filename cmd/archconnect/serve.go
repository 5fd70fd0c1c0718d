package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/dusk-indust/archconnect/internal/mcptools"
	"github.com/dusk-indust/archconnect/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newServeMCPCmd(flags *rootFlags) *cobra.Command {
	var addr, metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Run the connection tools as an MCP server",
		Long: "serve-mcp exposes the connection tools over MCP. With --addr (or mcpAddr in " +
			"archconnect.yml) it serves streamable HTTP; otherwise it speaks MCP on stdio.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.MCPAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics, err := session.NewMetrics(reg)
			if err != nil {
				return err
			}
			if metricsAddr != "" {
				go serveMetrics(ctx, a, reg, metricsAddr)
			}

			svc, err := mcptools.NewConnectService(a.engine, store, a.cfg.Viewpoint,
				session.WithLogger(a.log.WithName("session")), session.WithMetrics(metrics))
			if err != nil {
				return err
			}

			if addr == "" {
				return mcptools.RunMCPServerStdio(ctx, svc)
			}
			a.log.Info("serving MCP over HTTP", "addr", addr)
			return mcptools.RunMCPServer(ctx, svc, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "serve streamable HTTP on this address instead of stdio")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

func serveMetrics(ctx context.Context, a *app, reg *prometheus.Registry, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	a.log.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.log.Error(err, "metrics server stopped")
	}
}
