// file: cmd/config_cmd.go
// version: 1.0.0
// guid: 5c3f8e1a-6d2b-4a9e-b7c4-1e8d0f6a2b53

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jdfalk/voicematch/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const maskedSecret = "********"

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			if err := config.SaveConfigToFile(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "replace an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.AppConfig
			if cfg.Admin.Password != "" {
				cfg.Admin.Password = maskedSecret
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	configCmd.AddCommand(initCmd, showCmd)
	return configCmd
}

// configPath is --config when given, otherwise the default file in $HOME.
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, defaultConfigName+".yaml"), nil
}
