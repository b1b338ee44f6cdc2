package cmd

import (
	"fmt"

	"github.com/brogergvhs/noveld/internal/checkpoint"
	"github.com/brogergvhs/noveld/internal/config"

	"github.com/spf13/cobra"
)

var (
	statusURL           string
	statusCheckpointDir string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show checkpoint progress for a novel",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := config.LoadMerged(config.Options{
			IgnoreConfig:  flagIgnoreConfig,
			DefaultURL:    statusURL,
			CheckpointDir: statusCheckpointDir,
		})
		if err != nil {
			return err
		}
		if cfg.DefaultURL == "" {
			return fmt.Errorf("missing --url and no default_url in config")
		}

		store := checkpoint.NewStore(cfg.CheckpointDir)
		novelID := checkpoint.NovelID(cfg.DefaultURL)

		cp, err := store.Load(novelID)
		if err != nil {
			return err
		}
		if cp == nil {
			fmt.Printf("No checkpoint for %s (%s)\n", cfg.DefaultURL, novelID)
			return nil
		}

		fetched, failed, pending := cp.Counts()
		fmt.Printf("Novel:    %s\n", cp.NovelTitle)
		fmt.Printf("Source:   %s\n", cp.SourceURL)
		fmt.Printf("File:     %s\n", store.Path(novelID))
		fmt.Printf("Chapters: %d (fetched %d, failed %d, pending %d)\n",
			len(cp.Chapters), fetched, failed, pending)
		fmt.Printf("Updated:  %s\n", cp.UpdatedAt.Local())

		for _, rec := range cp.Chapters {
			if rec.Status == checkpoint.StatusFailed {
				fmt.Printf("  failed after %d attempts: %s (%s)\n", rec.Attempts, rec.Title, rec.URL)
			}
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusURL, "url", "", "novel homepage URL")
	statusCmd.Flags().StringVar(&statusCheckpointDir, "checkpoint-dir", "", "folder holding per-novel checkpoint files")
	rootCmd.AddCommand(statusCmd)
}
