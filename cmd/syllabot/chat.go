package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/syllabot/syllabot/pkg/log"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question-answering over ingested courses",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		a := newApp(ctx)
		defer a.close()

		fmt.Println("Ask about your course materials. Ctrl-D to exit.")

		var sessionID string
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			query := strings.TrimSpace(scanner.Text())
			if query == "" {
				continue
			}

			answer, err := a.assistant.Answer(ctx, query, sessionID)
			if err != nil {
				if ctx.Err() != nil {
					break
				}
				log.FromCtx(ctx).Error().Err(err).Msg("query failed")
				fmt.Println("Sorry, that query failed. Check the logs and try again.")
				continue
			}
			sessionID = answer.SessionID

			fmt.Println(answer.Text)
			if len(answer.Citations) > 0 {
				fmt.Println("\nSources:")
				for _, c := range answer.Citations {
					if c.Link != "" {
						fmt.Printf("  - %s (%s)\n", c.Text, c.Link)
					} else {
						fmt.Printf("  - %s\n", c.Text)
					}
				}
			}
			fmt.Println()
		}

		return scanner.Err()
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
