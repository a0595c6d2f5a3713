package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Maintenance tools for the storefront catalog",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("rules", "", "catalog rule file (overrides CATALOG_RULES_FILE)")

	root.AddCommand(normalizeCmd())
	root.AddCommand(fixNamesCmd())
	root.AddCommand(imagesCmd())
	root.AddCommand(indexCmd())
	root.AddCommand(auditCmd())

	return root
}
