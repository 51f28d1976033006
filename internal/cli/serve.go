package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/moltda/pkg/api"
	"github.com/matzehuels/moltda/pkg/homology"
	"github.com/matzehuels/moltda/pkg/observability"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		engine  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the vectorization API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			if !cmd.Flags().Changed("engine") {
				engine = c.Config.Engine.Command
			}
			return c.runServe(cmd.Context(), addr, engine, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&engine, "engine", "", "homology engine command enabling /v1/compute")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, engine string, noCache bool) error {
	hooks := observability.NewPrometheusHooks(prometheus.DefaultRegisterer)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := &api.Server{
		Runner:       runner,
		Store:        st,
		Defaults:     c.Config.Options(),
		MaxBodyBytes: c.Config.Server.MaxBodyBytes,
		Logger:       c.Logger,
	}
	if engine != "" {
		eng, err := homology.NewCommandEngine(engine, c.Logger)
		if err != nil {
			return err
		}
		srv.Engine, srv.EngineName = eng, strings.Join(strings.Fields(engine), " ")
	}

	httpSrv := srv.HTTPServer(addr)
	errc := make(chan error, 1)
	go func() {
		errc <- httpSrv.ListenAndServe()
	}()
	printSuccess("Listening on %s", StyleHighlight.Render(addr))
	printDetail("metrics at /metrics, health at /healthz")

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Config.Server.ShutdownTimeout.Duration)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
