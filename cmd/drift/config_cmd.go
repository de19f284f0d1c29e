package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/raphi011/drift/internal/config"
	"github.com/raphi011/drift/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage drift configuration.

Config file: ~/.config/drift/config.toml`,
		Example: `  drift config init   # Create default config
  drift config show   # Show effective config
  drift config path   # Print config file location`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force  bool
		stdout bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		Example: `  drift config init      # Create config at ~/.config/drift/config.toml
  drift config init -f   # Overwrite existing config
  drift config init -s   # Print config to stdout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := encodeConfig(config.Default())
			if err != nil {
				return err
			}

			if stdout {
				fmt.Print(content)
				return nil
			}

			configPath, err := config.Path()
			if err != nil {
				return err
			}

			if !force {
				if _, err := os.Stat(configPath); err == nil {
					return fmt.Errorf("config file already exists: %s (use -f to overwrite)", configPath)
				}
			}

			if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
				return err
			}

			fmt.Printf("Created config file: %s\n", configPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")
	cmd.Flags().BoolVarP(&stdout, "stdout", "s", false, "Print config to stdout")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show effective config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := encodeConfig(cfg)
			if err != nil {
				return err
			}
			output.FromContext(cmd.Context()).Printf("%s", content)
			return nil
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := config.Path()
			if err != nil {
				return err
			}
			output.FromContext(cmd.Context()).Println(configPath)
			return nil
		},
	}
}

func encodeConfig(c config.Config) (string, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return b.String(), nil
}
