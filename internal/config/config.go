// Package config builds the CLI surface from spec.md §6, layered the way
// the teacher's phenix/cmd/root.go layers its own configuration:
// spf13/pflag flags (bound through spf13/cobra) into a spf13/viper
// registry that also reads a netshield.yaml file and NETSHIELD_-prefixed
// environment variables, in flag > env > config file > default precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sandia-netshield/netshield/internal/detect/ensemble"
	"github.com/sandia-netshield/netshield/internal/errs"
)

// Mode selects the run mode from spec.md §6.
type Mode string

const (
	ModeDataset Mode = "dataset"
	ModeCustom  Mode = "custom"
	ModeLive    Mode = "live"
)

// Defaults from spec.md §6.
const (
	DefaultWindowSize      = 500
	DefaultEntropyThresh   = 0.20
	DefaultPCAThresh       = 2.5
	DefaultPCAWarmup       = 10
	DefaultCusumThresh     = 3.0
	DefaultCusumDrift      = 0.5
	DefaultMinIPCount      = 5
	DefaultRateLimit       = "1000:100" // "<rate_kbps>:<burst_kb>"
	DefaultRateLimitKbps   = 1000
	DefaultRateLimitBurstKb = 100
	DefaultMetricsAddr     = ""
	envPrefix              = "NETSHIELD"
	configFileBaseName     = "netshield"
)

// Config is the fully resolved, validated configuration for one run.
type Config struct {
	Mode             Mode
	Input            string
	Interface        string
	WindowSize       int
	Detectors        []string
	EntropyThreshold float64
	PCAThreshold     float64
	PCAWarmup        int
	CusumThreshold   float64
	CusumDrift       float64
	EnableMitigation bool
	OutputDir        string
	MinIPCount       int
	RateLimit        string
	Verbose          bool
	Interactive      bool
	MetricsAddr      string
	RedisAddr        string
}

// Enabled translates Detectors into the ensemble bitmask.
func (c Config) Enabled() ensemble.Enabled {
	var e ensemble.Enabled
	for _, d := range c.Detectors {
		switch strings.ToLower(strings.TrimSpace(d)) {
		case "entropy":
			e |= ensemble.Entropy
		case "pca":
			e |= ensemble.PCA
		case "cusum":
			e |= ensemble.Cusum
		}
	}
	return e
}

// Validate reports a *errs.Error of KindConfig on any invalid combination
// spec.md §6/§7 calls out: a non-positive window size, an empty detector
// set, an unknown mode or any mode missing its --input, mitigation enabled
// without an interface, or a non-positive min-ip-count.
func (c Config) Validate() error {
	if c.WindowSize <= 0 {
		return errs.New(errs.KindConfig, "window-size must be positive")
	}
	if c.Enabled() == 0 {
		return errs.New(errs.KindConfig, "at least one detector must be enabled")
	}
	switch c.Mode {
	case ModeDataset, ModeCustom:
		if c.Input == "" {
			return errs.New(errs.KindConfig, fmt.Sprintf("--input is required for --mode %s", c.Mode))
		}
	case ModeLive:
		if c.Input == "" {
			return errs.New(errs.KindConfig, "--input (capture directory) is required for --mode live")
		}
	default:
		return errs.New(errs.KindConfig, fmt.Sprintf("unknown mode %q", c.Mode))
	}
	if c.EnableMitigation && c.Interface == "" {
		return errs.New(errs.KindConfig, "--interface is required when --enable-mitigation is set")
	}
	if c.MinIPCount <= 0 {
		return errs.New(errs.KindConfig, "min-ip-count must be positive")
	}
	return nil
}

// BindFlags registers spec.md §6's CLI surface as persistent flags on cmd
// and binds them into viper, mirroring phenix/cmd/root.go's
// viper.BindPFlags(rootCmd.PersistentFlags()) call.
func BindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.String("mode", string(ModeDataset), "run mode: dataset, custom, or live")
	flags.String("input", "", "input CSV path (dataset/custom) or capture directory (live)")
	flags.String("interface", "", "network interface for mitigation rate-limiting")
	flags.Int("window-size", DefaultWindowSize, "number of flows per window")
	flags.StringSlice("detectors", []string{"entropy", "pca", "cusum"}, "detectors to run")
	flags.Float64("entropy-threshold", DefaultEntropyThresh, "entropy anomaly score threshold")
	flags.Float64("pca-threshold", DefaultPCAThresh, "PCA anomaly score threshold")
	flags.Int("pca-warmup", DefaultPCAWarmup, "PCA warm-up window count")
	flags.Float64("cusum-threshold", DefaultCusumThresh, "CUSUM alarm threshold")
	flags.Float64("cusum-drift", DefaultCusumDrift, "CUSUM drift parameter")
	flags.Bool("enable-mitigation", false, "shell out to block/rate-limit suspect addresses")
	flags.String("output-dir", ".", "directory for result/blocklist CSV output")
	flags.Int("min-ip-count", DefaultMinIPCount, "minimum suspect count to appear in the blocklist")
	flags.String("rate-limit", DefaultRateLimit, "rate-limit spec passed to the mitigation collaborator")
	flags.Bool("verbose", false, "debug-level logging")
	flags.Bool("interactive", false, "enter interactive mode (out of scope)")
	flags.String("metrics-addr", DefaultMetricsAddr, "address to serve Prometheus metrics on, empty disables it")
	flags.String("redis-addr", "", "optional Redis address for a shared suspect-address mirror, empty disables it")

	viper.BindPFlags(flags)
}

// InitViper wires config-file discovery and environment variables the way
// phenix/cmd/root.go's initConfig does: current directory, then
// $HOME/.config/netshield, then /etc/netshield, then NETSHIELD_-prefixed
// env vars, all layered under whatever flags the caller already bound.
func InitViper(homeConfigDir string) {
	viper.SetConfigName(configFileBaseName)
	viper.AddConfigPath(".")
	if homeConfigDir != "" {
		viper.AddConfigPath(homeConfigDir)
	}
	viper.AddConfigPath("/etc/netshield")

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	_ = viper.ReadInConfig() // absence of a config file is not an error
}

// FromViper assembles a Config from whatever viper resolved across flags,
// environment, config file, and defaults.
func FromViper() Config {
	return Config{
		Mode:             Mode(viper.GetString("mode")),
		Input:            viper.GetString("input"),
		Interface:        viper.GetString("interface"),
		WindowSize:       viper.GetInt("window-size"),
		Detectors:        viper.GetStringSlice("detectors"),
		EntropyThreshold: viper.GetFloat64("entropy-threshold"),
		PCAThreshold:     viper.GetFloat64("pca-threshold"),
		PCAWarmup:        viper.GetInt("pca-warmup"),
		CusumThreshold:   viper.GetFloat64("cusum-threshold"),
		CusumDrift:       viper.GetFloat64("cusum-drift"),
		EnableMitigation: viper.GetBool("enable-mitigation"),
		OutputDir:        viper.GetString("output-dir"),
		MinIPCount:       viper.GetInt("min-ip-count"),
		RateLimit:        viper.GetString("rate-limit"),
		Verbose:          viper.GetBool("verbose"),
		Interactive:      viper.GetBool("interactive"),
		MetricsAddr:      viper.GetString("metrics-addr"),
		RedisAddr:        viper.GetString("redis-addr"),
	}
}
