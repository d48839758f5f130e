package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the ingested course catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a := newApp(ctx)
		defer a.close()

		stats, err := a.assistant.Stats(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Courses: %d\n", stats.TotalCourses)
		for _, title := range stats.CourseTitles {
			fmt.Printf("  - %s\n", title)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
