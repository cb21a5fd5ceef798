package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/navfolio/internal/common"
)

var (
	analyzeFile string
	analyzeName string
	analyzeRisk bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "CSV or JSON holdings file")
	analyzeCmd.Flags().StringVar(&analyzeName, "name", "", "Portfolio name")
	analyzeCmd.Flags().BoolVar(&analyzeRisk, "risk", false, "Print the risk report instead of the full analysis")
	_ = analyzeCmd.MarkFlagRequired("file")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyse a holdings file",
	Long: `Import holdings from a CSV (scheme_code,units,buy_price,buy_date) or JSON
file, value them at the latest NAVs and print the analysis as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(analyzeFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", analyzeFile, err)
		}

		a, err := newCLIApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		p, err := a.PortfolioService.ImportPortfolio(ctx, common.ResolveUserID(ctx), analyzeName, filepath.Base(analyzeFile), data)
		if err != nil {
			return err
		}
		holdings, err := a.PortfolioService.ResolveHoldings(ctx, p)
		if err != nil {
			return err
		}

		now := time.Now()
		if analyzeRisk {
			report, err := a.AnalysisService.AnalyzeRisk(ctx, holdings, now)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		}

		report, err := a.AnalysisService.Analyze(ctx, holdings, now)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), report)
	},
}
