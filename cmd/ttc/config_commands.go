package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thatrtxdude/tarkov-texture-converter/internal/config"
)

func newConfigCommand(flags *convertFlags) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(flags))
	configCmd.AddCommand(newConfigValidateCommand(flags))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(flags *convertFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(flags.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			source := path
			if !exists {
				source = path + " (not found; defaults shown)"
			}
			rows := [][2]string{
				{"Config file", source},
				{"Workers", workersLabel(cfg.Processing.Workers)},
				{"Optimize PNG", strconv.FormatBool(cfg.Processing.OptimizePNG)},
				{"SPECGLOS mode", strconv.FormatBool(cfg.Processing.SpecGlosMode)},
				{"Output subfolder", cfg.Processing.OutputSubfolder},
				{"Update glTF", strconv.FormatBool(cfg.Processing.UpdateGltf)},
				{"Log format", cfg.Logging.Format},
				{"Log level", cfg.Logging.Level},
				{"Log directory", orUnset(cfg.Logging.LogDir)},
				{"History enabled", strconv.FormatBool(cfg.History.Enabled)},
				{"History database", cfg.History.Path},
			}
			fmt.Fprintln(out, renderKVTable("Configuration", rows))
			return nil
		},
	}
}

func newConfigValidateCommand(flags *convertFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, exists, err := config.Load(flags.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func workersLabel(workers int) string {
	if workers == 0 {
		return "auto (host CPU count)"
	}
	return strconv.Itoa(workers)
}

func orUnset(value string) string {
	if value == "" {
		return "(unset)"
	}
	return value
}
