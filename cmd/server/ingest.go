package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/dailymath/dailymath/internal/store"
)

func newIngestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <questions.md>",
		Short: "Replace the daily questions with a markdown table (| date | question | streak |)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			dbStore, err := store.NewSQLiteStore(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer dbStore.Close()

			log.Println("Starting question ingestion...")
			n, err := dbStore.IngestQuestionsFromFile(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("question ingestion failed: %w", err)
			}
			log.Printf("Question ingestion complete. Ingested %d questions.", n)
			return nil
		},
	}
}
