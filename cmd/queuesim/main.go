package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trace-sched/queuesim/internal/config"
	"github.com/trace-sched/queuesim/internal/driver"
	"github.com/trace-sched/queuesim/internal/emitter"
	"github.com/trace-sched/queuesim/internal/metrics"
	"github.com/trace-sched/queuesim/internal/reader"
	"github.com/trace-sched/queuesim/internal/scheduler"
	"github.com/trace-sched/queuesim/pkg/log"
)

// Version information (set via ldflags during build).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "queuesim [logfile] [inputfile...]",
	Short:   "Trace-driven autoscaling scheduler simulator",
	Version: Version,
	Long: `queuesim replays a time-ordered stream of job records against a
simulated autoscaling scheduler for three batch-compute queues
(export, url, general), emitting an interleaved stream of VM
launch/terminate commands and echoed job records on stdout.

The first positional argument, if given, is a path to write the
per-job utilization log to. Any remaining positional arguments are
additional input files, read after stdin is exhausted.`,
	Args: cobra.ArbitraryArgs,
	RunE: runRoot,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("queuesim version %s\nCommit: %s\nBuilt: %s\n", Version, Commit, BuildTime))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.Flags().String("config", "", "Path to a YAML tunables override file")
	rootCmd.Flags().String("metrics-addr", "", "Expose Prometheus metrics on this host:port (disabled if empty)")

	cobra.OnInitialize(initLogging)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")
	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

func runRoot(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	tunables, err := config.Load(configPath)
	if err != nil {
		return err
	}

	var logfilePath string
	var inputPaths []string
	if len(args) > 0 {
		logfilePath = args[0]
		inputPaths = args[1:]
	}

	if metricsAddr != "" {
		serveMetrics(metricsAddr)
	}

	var sink *scheduler.FileSink
	if logfilePath != "" {
		sink, err = scheduler.NewFileSink(logfilePath)
		if err != nil {
			return err
		}
	}
	closeSink := func() {
		if sink == nil {
			return
		}
		if err := sink.Close(); err != nil {
			log.Errorf("failed to close log sink", err)
		}
	}

	in, err := buildInput(inputPaths)
	if err != nil {
		closeSink()
		return err
	}

	em := emitter.New(os.Stdout)
	r := reader.New(in)

	var logSink scheduler.LogSink
	if sink != nil {
		logSink = sink
	}
	mgr := scheduler.New(tunables, em.Command, logSink)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	doneCh := make(chan error, 1)
	go func() {
		doneCh <- driver.Run(r, mgr, em)
	}()

	select {
	case sig := <-sigCh:
		log.Logger.Info().Str("signal", sig.String()).Msg("received signal, shutting down")
		closeSink()
		os.Exit(0)
	case err := <-doneCh:
		closeSink()
		if err != nil {
			log.Logger.Error().Err(err).Msg("run failed")
			os.Exit(1)
		}
	}

	return nil
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()
}

func buildInput(paths []string) (io.Reader, error) {
	readers := []io.Reader{os.Stdin}
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("open input %q: %w", p, err)
		}
		readers = append(readers, f)
	}
	if len(readers) == 1 {
		return readers[0], nil
	}
	return io.MultiReader(readers...), nil
}
