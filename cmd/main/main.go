package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:           "quote-service",
		Short:         "Product catalog matching and quoting service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); environment variables override it")

	serve := newServeCmd(&cfgFile)
	root.AddCommand(serve, newReconcileCmd(&cfgFile))
	// без подкоманды: сервер
	root.RunE = serve.RunE
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
