package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eleco-media/amaike/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "amaike",
	Short: "Conversational news assistant for El Eco de Tandil",
	Long:  "Answers reader questions from eleco.com.ar via grounded search plus a keyword article index, and captures citizen news tips through a guided interview.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
