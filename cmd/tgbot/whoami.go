package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/RealHotChiliPepe/tgbot/internal/config"
	"github.com/RealHotChiliPepe/tgbot/internal/telegram"
)

// ---------------------------------------------------------------------------
// whoamiCmd
// ---------------------------------------------------------------------------

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Verify the configured session and print the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.ValidateCredential(); err != nil {
				return err
			}

			holder := telegram.NewHolder(cfg)
			defer holder.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			me, err := telegram.NewClient(holder).Me(ctx)
			if err != nil {
				return err
			}

			name := strings.TrimSpace(me.FirstName + " " + me.LastName)
			fmt.Printf("id:       %d\n", me.ID)
			fmt.Printf("name:     %s\n", name)
			if me.Username != "" {
				fmt.Printf("username: @%s\n", me.Username)
			}
			return nil
		},
	}
}
