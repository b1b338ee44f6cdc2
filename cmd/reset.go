package cmd

import (
	"fmt"

	"github.com/brogergvhs/noveld/internal/checkpoint"
	"github.com/brogergvhs/noveld/internal/config"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	resetURL           string
	resetCheckpointDir string
	resetForce         bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Destroy the checkpoint for a novel so the next crawl starts over",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := config.LoadMerged(config.Options{
			IgnoreConfig:  flagIgnoreConfig,
			DefaultURL:    resetURL,
			CheckpointDir: resetCheckpointDir,
		})
		if err != nil {
			return err
		}
		if cfg.DefaultURL == "" {
			return fmt.Errorf("missing --url and no default_url in config")
		}

		store := checkpoint.NewStore(cfg.CheckpointDir)
		novelID := checkpoint.NovelID(cfg.DefaultURL)

		if !resetForce {
			prompt := promptui.Prompt{
				Label:     fmt.Sprintf("Delete checkpoint %s", store.Path(novelID)),
				IsConfirm: true,
			}
			if _, err := prompt.Run(); err != nil {
				return fmt.Errorf("reset cancelled")
			}
		}

		if err := store.Reset(novelID); err != nil {
			return err
		}

		fmt.Println("Checkpoint removed:", store.Path(novelID))
		return nil
	},
}

func init() {
	resetCmd.Flags().StringVar(&resetURL, "url", "", "novel homepage URL")
	resetCmd.Flags().StringVar(&resetCheckpointDir, "checkpoint-dir", "", "folder holding per-novel checkpoint files")
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}
