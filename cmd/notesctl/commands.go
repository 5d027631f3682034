package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"example.com/clerk-notes/internal/client"
)

func newClient() (*client.Client, error) {
	_ = godotenv.Load()

	baseURL := os.Getenv("NOTES_API_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("NOTES_API_URL is required")
	}
	return client.New(baseURL, os.Getenv("NOTES_TOKEN"), nil), nil
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the Clerk publishable key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			key, err := c.Config(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			items, err := c.List(cmd.Context())
			if err != nil {
				return err
			}
			if asHTML {
				return client.RenderNotes(cmd.OutOrStdout(), items)
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	}

	cmd.Flags().BoolVar(&asHTML, "html", false, "render note cards as HTML")
	return cmd
}

func createCmd() *cobra.Command {
	var content string

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			n, err := c.Create(cmd.Context(), args[0], content)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), n)
		},
	}

	cmd.Flags().StringVarP(&content, "content", "c", "", "note body")
	return cmd
}

func updateCmd() *cobra.Command {
	var content string

	cmd := &cobra.Command{
		Use:   "update <id> <title>",
		Short: "Replace a note's title and content",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			n, err := c.Update(cmd.Context(), id, args[1], content)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), n)
		},
	}

	cmd.Flags().StringVarP(&content, "content", "c", "", "note body")
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			deleted, err := c.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted note %d\n", deleted)
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid note id %q", s)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
