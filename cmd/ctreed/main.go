// Command ctreed runs the keyed-tree command server: an administrator
// loop on stdin spawning and supervising concurrent client workers against
// one shared tree.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dijkstracula/ctreed/internal/admin"
	"github.com/dijkstracula/ctreed/internal/control"
	"github.com/dijkstracula/ctreed/internal/metrics"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		metricsAddr string
		logLevel    string
		exitStatus  int
	)

	root := &cobra.Command{
		Use:   "ctreed",
		Short: "Concurrent keyed-tree command server",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := serve(metricsAddr, logLevel)
			exitStatus = status
			return err
		},
	}
	root.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve /metrics on (empty disables it)")
	root.Flags().StringVar(&logLevel, "log-level", "info", "zerolog level (debug, info, warn, error)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return exitStatus
}

// serve wires up logging, metrics and the administrator loop, and returns
// the process exit status from spec section 6: 0 on a clean `x`, non-zero
// if stdin ended first. An error return indicates initialisation failure
// (spec error kind (v)), which is always fatal.
func serve(metricsAddr, logLevel string) (int, error) {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return 1, fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	ctrl := control.New(m)

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warn().Err(err).Msg("metrics listener stopped")
			}
		}()
		log.Info().Str("addr", metricsAddr).Msg("serving metrics")
	}

	a := admin.New(os.Stdin, os.Stdout, ctrl, m, log, nil)
	status := a.Run()
	fmt.Fprintln(os.Stderr, "Program terminating.")
	return status, nil
}
