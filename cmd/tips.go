package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eleco-media/amaike/internal/export"
	"github.com/eleco-media/amaike/internal/model"
	"github.com/eleco-media/amaike/internal/store"
)

var (
	tipsStatus string
	tipsLimit  int
)

var tipsCmd = &cobra.Command{
	Use:   "tips",
	Short: "Inspect the tip archive",
}

var tipsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived tips",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		tips, err := st.ListTips(ctx, store.TipFilter{
			Status: model.TipStatus(tipsStatus),
			Limit:  tipsLimit,
		})
		if err != nil {
			return err
		}

		if len(tips) == 0 {
			fmt.Println("No hay tips archivados.")
			return nil
		}
		for _, tip := range tips {
			fmt.Printf("%s  %-16s  %-10s  %s\n",
				tip.CreatedAt.Format("2006-01-02 15:04"),
				tip.Status,
				tip.Fields.Category,
				tip.Fields.What,
			)
		}
		return nil
	},
}

var tipsExportCmd = &cobra.Command{
	Use:   "export [file.xlsx]",
	Short: "Export archived tips to a spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		tips, err := st.ListTips(ctx, store.TipFilter{
			Status: model.TipStatus(tipsStatus),
			Limit:  tipsLimit,
		})
		if err != nil {
			return err
		}

		if err := export.WriteTips(args[0], tips); err != nil {
			return err
		}
		zap.L().Info("tips exported", zap.Int("count", len(tips)), zap.String("file", args[0]))
		return nil
	},
}

func init() {
	tipsCmd.PersistentFlags().StringVar(&tipsStatus, "status", "", "filter by status (ready_to_submit, submitted, failed)")
	tipsCmd.PersistentFlags().IntVar(&tipsLimit, "limit", 100, "maximum number of tips")
	tipsCmd.AddCommand(tipsListCmd)
	tipsCmd.AddCommand(tipsExportCmd)
	rootCmd.AddCommand(tipsCmd)
}
