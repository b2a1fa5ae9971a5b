package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/eleco-media/amaike/internal/assistant"
	"github.com/eleco-media/amaike/internal/model"
	"github.com/eleco-media/amaike/internal/tips"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		a := env.factory()
		fmt.Println(a.Greeting())
		fmt.Println(`(escribe "salir" para terminar)`)

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if strings.EqualFold(line, "salir") {
				break
			}

			reply, err := a.HandleMessage(ctx, line)
			if err != nil {
				fmt.Println("Lo siento, ha ocurrido un error al procesar tu solicitud. Por favor, intenta de nuevo más tarde.")
				continue
			}

			printReply(reply)

			if reply.Tip != nil {
				if err := confirmAndSubmit(cmd, a, reply.Tip, scanner); err != nil {
					return err
				}
			}
		}
		return eris.Wrap(scanner.Err(), "read input")
	},
}

// confirmAndSubmit shows the captured tip and submits it if the user agrees.
func confirmAndSubmit(cmd *cobra.Command, a *assistant.Assistant, tip *model.TipRecord, scanner *bufio.Scanner) error {
	fmt.Println()
	fmt.Println(tips.FormatSummary(tip.Fields))
	fmt.Print("\n¿Enviar esta información a la redacción? (s/n) ")

	if !scanner.Scan() {
		return nil
	}
	answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
	if answer != "s" && answer != "si" && answer != "sí" {
		fmt.Println("Envío cancelado. Puedes seguir conversando.")
		return nil
	}

	result, err := a.SubmitTip(cmd.Context(), tip)
	if err != nil {
		return err
	}
	fmt.Println(result.Message)
	if result.SubmissionID != "" {
		fmt.Printf("Número de seguimiento: %s\n", result.SubmissionID)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
