package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &convertFlags{}

	rootCmd := &cobra.Command{
		Use:   "ttc INPUT_DIR",
		Short: "Convert game texture maps between rendering pipeline conventions",
		Long: `ttc converts normal, diffuse, gloss, and SPECGLOS texture maps into the
channel layout a metallic-roughness PBR pipeline expects. In SPECGLOS mode it
also rewrites glTF scene documents so their materials reference the newly
produced textures.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], flags)
		},
	}

	rootCmd.Flags().BoolVar(&flags.specGlos, "specglos", false, "Enable SPECGLOS mode and the glTF update pass")
	rootCmd.Flags().BoolVar(&flags.optimize, "optimize", false, "Use higher (slower) PNG compression")
	rootCmd.Flags().IntVar(&flags.workers, "workers", 0, "Worker count for both stages (0 = host CPU count)")
	rootCmd.Flags().BoolVar(&flags.noGltf, "no-gltf", false, "Skip the glTF update pass even in SPECGLOS mode")
	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "Override log format (console, json)")

	rootCmd.AddCommand(newConfigCommand(flags))
	rootCmd.AddCommand(newHistoryCommand(flags))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
