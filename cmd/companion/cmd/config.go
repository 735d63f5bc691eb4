package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ledgerbird/companion-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage companion configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter configuration file",
	Long: `Create a starter configuration file in the current directory.
With --user the file is created at ~/.config/companion/ instead, where
it applies to every project.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration after merging defaults, config
files, environment variables, and flags. The API token is redacted.`,
	RunE: runConfigShow,
}

var (
	configInitUser  bool
	configInitForce bool
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	configInitCmd.Flags().BoolVar(&configInitUser, "user", false, "Create the per-user config instead of a project one")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing configuration file")
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	if configInitUser {
		path, err := config.EnsureUserConfigFile()
		if err != nil {
			return err
		}
		fmt.Printf("user config at %s\n", path)
		return nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}
	path := filepath.Join(cwd, ".companion.yaml")

	if _, err := os.Stat(path); err == nil && !configInitForce {
		return fmt.Errorf("configuration already exists at %s, use --force to overwrite", path)
	}

	if err := os.WriteFile(path, []byte(config.DefaultConfigYAML), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Printf("created %s\n", path)
	return nil
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	_, loader, err := loadConfig()
	if err != nil {
		return err
	}

	settings := loader.AllSettings()
	redactToken(settings)

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	if path := loader.ConfigFile(); path != "" {
		fmt.Printf("# from %s\n", path)
	} else {
		fmt.Println("# defaults and environment only")
	}
	fmt.Print(string(out))
	return nil
}

// redactToken blanks the API token in a settings map so `config show`
// output is safe to paste into a support ticket.
func redactToken(settings map[string]interface{}) {
	api, ok := settings["api"].(map[string]interface{})
	if !ok {
		return
	}
	if tok, ok := api["token"].(string); ok && tok != "" {
		api["token"] = "[redacted]"
	}
}
