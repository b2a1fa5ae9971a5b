package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eleco-media/amaike/internal/assistant"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and print the answer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		a := env.factory()
		reply, err := a.HandleMessage(ctx, args[0])
		if err != nil {
			return err
		}

		printReply(reply)
		return nil
	},
}

func printReply(reply *assistant.Reply) {
	fmt.Println(reply.Text)
	if len(reply.Sources) > 0 {
		fmt.Println()
		for _, s := range reply.Sources {
			if s.Title != "" {
				fmt.Printf("  - %s (%s)\n", s.Title, s.URI)
			} else {
				fmt.Printf("  - %s\n", s.URI)
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(askCmd)
}
