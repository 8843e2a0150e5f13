// SmartHome backend.
//
// This is the main entry point. The binary serves the HTTP API over the
// house, its rooms and devices, ingests sensor readings from HTTP and
// optionally MQTT, mirrors them into InfluxDB, and answers the
// measurement analyses (aggregation, peak power, temperature comparison).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/config"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// configEnvVar names the environment variable consulted when --config is not given.
const configEnvVar = "SMARTHOME_CONFIG"

func main() {
	// Cancel on Ctrl+C and SIGTERM so serve can shut down cleanly.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "smarthome",
		Short:         "Smart-home measurement backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"path to the YAML configuration file (default $"+configEnvVar+", else built-in defaults)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newMigrateCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

// loadConfig resolves the configuration path and applies flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	path := o.configPath
	if path == "" {
		path = os.Getenv(configEnvVar)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "version: %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		},
	}
}
