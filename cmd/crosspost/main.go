package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	root := &cobra.Command{
		Use:           "crosspost",
		Short:         "Cross-platform social media publishing worker",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newWorkerCmd(), newPublishCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
