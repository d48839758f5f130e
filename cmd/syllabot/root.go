package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/syllabot/syllabot/internal/config"
	"github.com/syllabot/syllabot/pkg/log"
)

var (
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "syllabot",
	Short: "Syllabot is a course materials assistant",
	Long:  `Syllabot answers questions about ingested course materials using retrieval-augmented generation.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", config.IsDebug(), "enable debug logging")
}

func setupLogger(ctx context.Context) (context.Context, func()) {
	isDebug := debug || config.IsDebug()
	return log.NewContextWithLogger(ctx, isDebug)
}
