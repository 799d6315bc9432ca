package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/getmockd/httpmock/pkg/config"
	"github.com/getmockd/httpmock/pkg/httpmock"
	"github.com/getmockd/httpmock/pkg/logging"
	"github.com/getmockd/httpmock/pkg/metrics"
)

const shutdownTimeout = 5 * time.Second

type serveOptions struct {
	addr          string
	metricsListen string
	watch         bool
	policy        string
}

func newServeCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve fixtures over HTTP",
		Long: `Serves the fixture's queues over HTTP. The Host header of each request
selects the host, so point clients at the server with their usual URLs and a
Host header, or through a proxy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := serveOptions{
				addr:          c.v.GetString("addr"),
				metricsListen: c.v.GetString("metrics-listen"),
				watch:         c.v.GetBool("watch"),
				policy:        c.v.GetString("unmocked-policy"),
			}
			return c.serve(cmd.Context(), opts, c.logger(cmd.ErrOrStderr()), nil)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", ":4280", "listen address (env HTTPMOCK_ADDR)")
	flags.String("metrics-listen", "", "Prometheus metrics listen address; empty disables (env HTTPMOCK_METRICS_LISTEN)")
	flags.Bool("watch", false, "reload the fixture file when it changes (env HTTPMOCK_WATCH)")
	flags.String("unmocked-policy", "", "override the fixture's policy: notFound, passthrough, error (env HTTPMOCK_UNMOCKED_POLICY)")
	c.bindFlags(flags, "addr", "metrics-listen", "watch", "unmocked-policy")

	return cmd
}

// serve runs the mock server until ctx is done. ready, when set, receives
// the bound addresses once both listeners are up.
func (c *cli) serve(ctx context.Context, opts serveOptions, logger *slog.Logger, ready func(addr, metricsAddr net.Addr)) error {
	log := logging.Component(logger, "serve")

	var rec *metrics.Recorder
	if opts.metricsListen != "" {
		rec = metrics.NewRecorder(nil)
	}
	m := httpmock.New(httpmock.WithLogger(logger), httpmock.WithMetrics(rec))
	defer func() { _ = m.Close() }()

	var override *httpmock.UnmockedPolicy
	if opts.policy != "" {
		p, err := httpmock.ParseUnmockedPolicy(opts.policy)
		if err != nil {
			return err
		}
		override = &p
	}

	apply := func(fx *config.Fixture) {
		plan, err := config.Build(fx)
		if err != nil {
			log.Error("failed to apply fixture, keeping previous queues", "error", err)
			return
		}
		if override != nil {
			plan.SetUnmockedPolicy(*override)
		}
		n := plan.Replace(m)
		log.Info("fixture applied",
			logging.KeyCount, n,
			"defaultDomain", m.DefaultDomain(),
			"unmockedPolicy", m.UnmockedPolicy().String(),
		)
	}

	path := c.fixturePath()
	switch {
	case opts.watch:
		if path == "" || isGlob(path) {
			return errors.New("--watch needs a single fixture file")
		}
		w, err := config.Watch(ctx, path, apply, func(err error) {
			log.Warn("fixture reload failed", "error", err)
		})
		if err != nil {
			return err
		}
		defer w.Stop()
	case path != "":
		fx, err := c.loadFixture()
		if err != nil {
			return err
		}
		apply(fx)
	default:
		if override != nil {
			m.SetUnmockedPolicy(*override)
		}
		log.Warn("no fixture given, serving an empty mock")
	}

	ln, err := net.Listen("tcp", opts.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", opts.addr, err)
	}
	servers := []*http.Server{{Handler: m.Handler(), ReadHeaderTimeout: 10 * time.Second}}
	listeners := []net.Listener{ln}

	var metricsAddr net.Addr
	if rec != nil {
		mln, err := net.Listen("tcp", opts.metricsListen)
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("listen %s: %w", opts.metricsListen, err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", rec.Handler())
		servers = append(servers, &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second})
		listeners = append(listeners, mln)
		metricsAddr = mln.Addr()
		log.Info("serving metrics", "addr", metricsAddr.String())
	}

	errCh := make(chan error, len(servers))
	for i, srv := range servers {
		go func() {
			if err := srv.Serve(listeners[i]); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}
	log.Info("listening", "addr", ln.Addr().String(), logging.KeyNamespace, m.ID())
	if ready != nil {
		ready(ln.Addr(), metricsAddr)
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", "error", err)
		}
	}
	log.Info("stopped")
	return serveErr
}
