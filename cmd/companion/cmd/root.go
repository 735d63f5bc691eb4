package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	workspace string
	logLevel  string
	logFormat string
	noColor   bool
	quiet     bool

	// Version info - set via SetVersion()
	appVersion string
	appCommit  string
	appDate    string
)

var rootCmd = &cobra.Command{
	Use:   "companion",
	Short: "Review and approve AI bookkeeping proposals from the terminal",
	Long: `companion is the terminal review surface for Ledgerbird's AI
bookkeeping pipeline. It lists pending proposals grouped into clusters,
shows why the AI proposed each change, and lets a human approve or
reject them one at a time or as a batch.

Approvals only ever write to the ledger when the workspace's operating
mode permits it; the backend enforces the same gate. Rejection is never
gated.

Running 'companion' without arguments opens the interactive review
screen. Headless subcommands cover the same operations for scripting.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	// Default to the interactive review screen
	RunE: runReview,
}

func Execute() error {
	return rootCmd.Execute()
}

func SetVersion(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// GetVersion returns the application version string.
func GetVersion() string {
	return appVersion
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: .companion.yaml, then ~/.config/companion/.companion.yaml)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "",
		"workspace id to review")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "auto",
		"log format (auto, text, json)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-essential output")

	// Bind flags to viper (errors are nil when flag exists)
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("no_color", rootCmd.PersistentFlags().Lookup("no-color"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}
