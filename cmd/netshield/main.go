// Command netshield runs the flow-window anomaly detector described by
// spec.md: a batch run over a dataset/custom CSV, or a live poll loop over
// a capture directory. Flag, config-file, and environment layering follows
// the teacher's phenix/cmd/root.go pattern.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/user"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/sandia-netshield/netshield/internal/config"
	"github.com/sandia-netshield/netshield/internal/logging"
	"github.com/sandia-netshield/netshield/internal/mitigation"
	"github.com/sandia-netshield/netshield/internal/orchestrate"
	"github.com/sandia-netshield/netshield/internal/signalctx"
	"github.com/sandia-netshield/netshield/internal/store"
	"github.com/sandia-netshield/netshield/internal/telemetry"
)

var rootCmd = &cobra.Command{
	Use:   "netshield",
	Short: "Flow-window DDoS anomaly detector",
	RunE:  run,
	// Interactive mode (spec.md §6) is out of scope; a bare invocation
	// with no flags just prints usage instead.
	SilenceUsage: true,
}

func init() {
	config.BindFlags(rootCmd)
	cobra.OnInitialize(func() {
		config.InitViper(homeConfigDir())
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if cmd.Flags().NFlag() == 0 {
		fmt.Fprintln(os.Stdout, "netshield: no arguments given; interactive mode is not implemented, see --help")
		return cmd.Help()
	}

	cfg := config.FromViper()
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("netshield: create output dir: %w", err)
	}

	var errFile io.Writer
	if cfg.OutputDir != "" {
		f, err := os.OpenFile(fmt.Sprintf("%s/error.log", cfg.OutputDir), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err == nil {
			errFile = f
			defer f.Close()
		}
	}
	zlog := logging.New(cfg.Verbose, errFile)

	var rec *telemetry.Recorder
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		rec = telemetry.New(reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				zlog.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	var mit *mitigation.Engine
	if cfg.EnableMitigation {
		hasPrivilege := os.Geteuid() == 0
		if !hasPrivilege {
			zlog.Warn().Msg("mitigation requested without root privilege; it will disable itself on first attempt")
		}
		mit = mitigation.New(mitigation.ExecExecutor{}, mitigation.RateLimit{RatePerSec: 1000, Burst: 100}, hasPrivilege)
	}

	var mirror *store.Mirror
	if cfg.RedisAddr != "" {
		client := store.NewClient(cfg.RedisAddr)
		mirror = store.New(client, fmt.Sprintf("run-%d", time.Now().Unix()))
	}

	numWorkers := runtime.NumCPU() - 1
	if numWorkers < 1 {
		numWorkers = 1
	}

	driver := orchestrate.New(cfg, zlog, numWorkers, rec, mit, mirror)

	switch cfg.Mode {
	case config.ModeDataset, config.ModeCustom:
		_, err := driver.RunOnce(context.Background(), cfg.Input, cfg.OutputDir)
		return err
	case config.ModeLive:
		token := &signalctx.Token{}
		stop := signalctx.WatchSignals(token)
		defer stop()
		return driver.RunLive(context.Background(), cfg.Input, cfg.OutputDir, token)
	default:
		return fmt.Errorf("netshield: unknown mode %q", cfg.Mode)
	}
}

func homeConfigDir() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}
	return u.HomeDir + "/.config/netshield"
}
