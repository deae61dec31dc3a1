package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/dailymath/dailymath/internal/config"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	rootCommand := &cobra.Command{
		Use:           "dailymath",
		Short:         "Daily math practice: photograph a solution, get it graded",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCommand.AddCommand(newServeCommand())
	rootCommand.AddCommand(newIngestCommand())

	if err := rootCommand.ExecuteContext(context.Background()); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}
	return cfg, nil
}
