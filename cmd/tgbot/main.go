package main

import (
	"fmt"
	"log"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/RealHotChiliPepe/tgbot/internal/audit"
	"github.com/RealHotChiliPepe/tgbot/internal/bridge"
	"github.com/RealHotChiliPepe/tgbot/internal/config"
	"github.com/RealHotChiliPepe/tgbot/internal/mcp"
	"github.com/RealHotChiliPepe/tgbot/internal/server"
	"github.com/RealHotChiliPepe/tgbot/internal/telegram"
)

const version = "0.1.0"

func main() {
	log.SetFlags(0)

	rootCmd := &cobra.Command{
		Use:   "tgbot",
		Short: "MCP server bridging one Telegram account to AI agents",
	}

	rootCmd.AddCommand(
		serveCmd(),
		loginCmd(),
		whoamiCmd(),
		setupCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// serveCmd
// ---------------------------------------------------------------------------

func serveCmd() *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.ValidateCredential(); err != nil {
				return err
			}
			if transport != "" {
				cfg.Transport = transport
			}

			holder := telegram.NewHolder(cfg)
			defer holder.Close()

			var auditor bridge.Auditor
			var auditLog *audit.Log
			if cfg.AuditDB != "" {
				if auditLog, err = audit.Open(cfg.AuditDB); err != nil {
					return err
				}
				defer auditLog.Close()
				auditor = auditLog
			}

			b := bridge.New(telegram.NewClient(holder), cfg, auditor)
			m := mcp.NewServer(b, version)

			switch cfg.Transport {
			case "stdio":
				log.Printf("[tgbot] serving MCP over stdio")
				return mcpserver.ServeStdio(m)
			case "sse":
				log.Printf("[tgbot] serving MCP over SSE on %s", cfg.Addr)
				return mcpserver.NewSSEServer(m).Start(cfg.Addr)
			case "streamable-http":
				return server.New(m, auditLog, cfg.Addr, version).Start()
			default:
				return fmt.Errorf("unknown transport %q", cfg.Transport)
			}
		},
	}

	cmd.Flags().StringVarP(&transport, "transport", "t", "",
		"MCP transport: stdio, sse, or streamable-http (overrides TELEGRAM_DEFAULT_TRANSPORT)")
	return cmd
}

// ---------------------------------------------------------------------------
// versionCmd
// ---------------------------------------------------------------------------

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tgbot version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("tgbot", version)
		},
	}
}
