package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/example/af/internal/cli"
	"github.com/example/af/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "af",
		Short:   "af - agent factory process and port coordinator",
		Version: version.String(),
		Long: `af coordinates long-lived development-agent processes per project:
one architect, any number of builders in isolated worktrees, utility
terminals, and annotation viewers. Each project gets its own port block
from a machine-wide registry, so many projects coexist on one machine.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging()
		},
	}

	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.SpawnCmd())
	rootCmd.AddCommand(cli.BuilderCmd())
	rootCmd.AddCommand(cli.ArchitectCmd())
	rootCmd.AddCommand(cli.UtilCmd())
	rootCmd.AddCommand(cli.AnnotateCmd())
	rootCmd.AddCommand(cli.PortsCmd())
	rootCmd.AddCommand(cli.ReconcileCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// configureLogging sets up logrus from AF_LOG_LEVEL. Warnings and up by
// default so normal command output stays clean.
func configureLogging() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.WarnLevel)
	if raw := os.Getenv("AF_LOG_LEVEL"); raw != "" {
		if level, err := log.ParseLevel(raw); err == nil {
			log.SetLevel(level)
		} else {
			log.Warnf("invalid log level %s, defaulting to warn", raw)
		}
	}
}
