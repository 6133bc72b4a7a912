package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RealHotChiliPepe/tgbot/internal/setup"
)

// ---------------------------------------------------------------------------
// setupCmd
// ---------------------------------------------------------------------------

func setupCmd() *cobra.Command {
	var client string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register tgbot with an MCP client, or print the config snippet",
		RunE: func(cmd *cobra.Command, args []string) error {
			bin, err := os.Executable()
			if err != nil {
				bin = "tgbot"
			}

			if client == "" {
				snippet, err := setup.Snippet(bin)
				if err != nil {
					return err
				}
				fmt.Println("Add this to your MCP client configuration:")
				fmt.Println()
				fmt.Println(snippet)
				fmt.Println()
				fmt.Println("Supported clients for automatic install (--client):")
				for _, c := range setup.SupportedClients() {
					fmt.Printf("  %-15s %s\n", c.Name, c.ConfigPath)
				}
				return nil
			}

			res, err := setup.Install(client, bin)
			if err != nil {
				return err
			}
			verb := "updated"
			if res.Created {
				verb = "created"
			}
			fmt.Printf("Registered tgbot with %s (%s %s)\n", res.Client, verb, res.ConfigPath)
			fmt.Println("Fill in the TELEGRAM_* values in the env block before first use.")
			return nil
		},
	}

	cmd.Flags().StringVar(&client, "client", "", "Install into a known client config: claude-code or claude-desktop")
	return cmd
}
