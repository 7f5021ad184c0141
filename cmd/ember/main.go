package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	root := &cobra.Command{
		Use:   "ember",
		Short: "Lower Ember programs to LLVM-style IR",
		Long: "Ember is a compiler backend demonstrator for zero-cost,\n" +
			"personality-function-based exception handling. It lowers\n" +
			"try/catch/finally programs to an LLVM-style IR with landing-pad\n" +
			"dispatch and prints the result.",
		SilenceUsage: true,
	}
	root.PersistentFlags().Bool("no-color", false, "Disable colored output")
	root.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	viper.BindPFlag("no-color", root.PersistentFlags().Lookup("no-color"))
	viper.BindPFlag("log-level", root.PersistentFlags().Lookup("log-level"))
	viper.BindEnv("no-color", "NO_COLOR")

	lowerCmd := &cobra.Command{
		Use:   "lower [sample]",
		Short: "Lower a sample program and print its IR",
		Args:  cobra.MaximumNArgs(1),
		RunE:  lowerHandler,
	}
	lowerCmd.Flags().String("func", "", "Print only the named function")
	viper.BindPFlag("func", lowerCmd.Flags().Lookup("func"))
	root.AddCommand(lowerCmd)

	root.AddCommand(&cobra.Command{
		Use:   "samples",
		Short: "List the built-in sample programs",
		RunE:  samplesHandler,
	})

	root.AddCommand(&cobra.Command{
		Use:   "ast [sample]",
		Short: "Display the AST for a sample program",
		Args:  cobra.MaximumNArgs(1),
		RunE:  astHandler,
	})

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ember %s (commit %s, built %s)\n", version, commit, date)
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
