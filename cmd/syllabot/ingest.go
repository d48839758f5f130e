package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/syllabot/syllabot/pkg/log"
)

var ingestDir string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index a folder of course documents",
	Long:  `Parses every .txt course script in the folder, skips already-ingested titles and adds the rest to the semantic index.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		a := newApp(ctx)
		defer a.close()

		courses, chunks, err := a.loader.LoadFolder(ctx, ingestDir)
		if err != nil {
			log.FromCtx(ctx).Error().Err(err).Msg("ingestion failed")
			return err
		}

		fmt.Printf("Ingested %d courses (%d chunks) from %s\n", courses, chunks, ingestDir)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "./docs", "folder with course documents")
	rootCmd.AddCommand(ingestCmd)
}
