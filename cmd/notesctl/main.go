package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "notesctl",
		Short: "Command line client for the notes API",
		Long: `notesctl calls the notes API as a signed-in user.

Environment:
  NOTES_API_URL  base URL of the endpoints, e.g. https://app.example.com/.netlify/functions
  NOTES_TOKEN    Clerk session token sent as the bearer credential`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(configCmd())
	root.AddCommand(listCmd())
	root.AddCommand(createCmd())
	root.AddCommand(updateCmd())
	root.AddCommand(deleteCmd())

	return root
}
