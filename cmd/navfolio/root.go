package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/navfolio/internal/app"
	"github.com/bobmcallan/navfolio/internal/common"
	"github.com/bobmcallan/navfolio/internal/storage"
)

var (
	configPath string
	logLevel   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to navfolio.toml (default: NAVFOLIO_CONFIG or config/navfolio.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Logging level")
}

var rootCmd = &cobra.Command{
	Use:           "navfolio",
	Version:       common.GetFullVersion(),
	Short:         "Mutual fund portfolio analytics",
	Long:          `Value a mutual fund portfolio at the latest NAVs and report returns, volatility, diversification and risk.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// newCLIApp builds an App backed by in-memory storage. The CLI never persists.
func newCLIApp() (*app.App, error) {
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(app.ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	config.Environment = "development"
	config.Storage.Backend = storage.BackendMemory
	if logLevel != "" {
		config.Logging.Level = logLevel
	}

	return app.NewAppWithConfig(config)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
