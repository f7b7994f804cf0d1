//-------------------------------------------------------------------------
//
// storepulse - retail analytics toolkit
//
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for storepulse.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/storepulse/storepulse/internal/config"
	"github.com/storepulse/storepulse/internal/logging"
	"github.com/storepulse/storepulse/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "storepulse",
		Short: "Retail sales analytics over PostgreSQL",
		Long: `storepulse manages a retail analytics database: it creates the
schema, seeds synthetic sales data, maintains a calendar dimension,
validates data quality, and produces analytical reports (rollups,
top-N rankings, ABC classification, stock-to-sales ratios, and
year-over-year summaries) on the command line or over HTTP.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./storepulse.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(groupingsCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var groupingsCmd = &cobra.Command{
	Use:   "groupings",
	Short: "List available summary groupings",
	Long: `List the groupings accepted by 'report summary --grouping' and the
summary API endpoint.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Available groupings:")
		cmd.Println()
		cmd.Println("  product      - one row per product")
		cmd.Println("  store        - one row per store")
		cmd.Println("  city         - one row per store city")
		cmd.Println("  category     - one row per product category")
		cmd.Println("  year         - one row per sale year")
		cmd.Println("  store-year   - one row per store and year")
		cmd.Println()
		cmd.Println("Rows are sorted by revenue, highest first.")
	},
}
