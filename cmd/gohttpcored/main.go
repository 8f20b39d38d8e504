// Command gohttpcored runs the HTTP/1.1+WebSocket serving core as a
// standalone daemon: load config, build the router, accept connections,
// and shut down cleanly on signal.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/inverno-io/gohttpcore/internal/admin"
	"github.com/inverno-io/gohttpcore/internal/config"
	"github.com/inverno-io/gohttpcore/internal/exchange"
	"github.com/inverno-io/gohttpcore/internal/metrics"
	"github.com/inverno-io/gohttpcore/internal/obslog"
	"github.com/inverno-io/gohttpcore/internal/router"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var adminAddr string

	cmd := &cobra.Command{
		Use:   "gohttpcored",
		Short: "Run the HTTP/1.1 and WebSocket serving core",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, adminAddr)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to the YAML config file (defaults applied if empty)")
	cmd.Flags().StringVar(&adminAddr, "admin-addr", ":9090", "address for the /debug/routes and /metrics endpoints")
	return cmd
}

func run(ctx context.Context, configPath, adminAddr string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	log := obslog.New()
	m := metrics.New()
	rt := router.New()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return obslog.Wrap(err, "listen")
	}

	adminServer := &http.Server{Addr: adminAddr, Handler: admin.NewHandler(rt, m)}
	engine := exchange.New(rt, cfg, log, m)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("admin endpoint listening on " + adminAddr)
		err := adminServer.ListenAndServe()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	})
	g.Go(func() error {
		return acceptLoop(gctx, listener, engine, log)
	})
	g.Go(func() error {
		<-gctx.Done()
		return obslog.Aggregate(adminServer.Close(), listener.Close())
	})

	log.Info("gohttpcored listening on " + cfg.ListenAddr)
	return g.Wait()
}

// acceptLoop accepts connections until listener closes (the signal-driven
// shutdown goroutine closes it), serving each on its own goroutine so one
// slow or pipelined connection never blocks another.
func acceptLoop(ctx context.Context, listener net.Listener, engine *exchange.Engine, log *obslog.Logger) error {
	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return obslog.Wrap(err, "accept")
			}
		}
		go func() {
			if err := engine.Serve(ctx, conn); err != nil {
				log.Error(err, "exchange engine")
			}
		}()
	}
}
