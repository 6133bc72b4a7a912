package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gotd/td/session"
	tgclient "github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/RealHotChiliPepe/tgbot/internal/config"
)

// ---------------------------------------------------------------------------
// loginCmd
// ---------------------------------------------------------------------------

func loginCmd() *cobra.Command {
	var (
		phone       string
		asString    bool
		sessionPath string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in interactively and save the session credential",
		Long: `Sign in with a phone number, a login code, and (when enabled) the 2FA
password. By default the session is written to a file; with --string it is
printed as a base64 session string instead, for TELEGRAM_SESSION_STRING.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			var (
				storage session.Storage
				mem     *session.StorageMemory
			)
			if asString {
				mem = new(session.StorageMemory)
				storage = mem
			} else {
				path := sessionPath
				if path == "" {
					path = cfg.SessionFile
				}
				if path == "" {
					path = "tgbot.session"
				}
				if dir := filepath.Dir(path); dir != "." {
					if err := os.MkdirAll(dir, 0o700); err != nil {
						return fmt.Errorf("create session dir: %w", err)
					}
				}
				storage = &session.FileStorage{Path: path}
				sessionPath = path
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client := tgclient.NewClient(cfg.APIID, cfg.APIHash, tgclient.Options{
				SessionStorage: storage,
				NoUpdates:      true,
			})

			return client.Run(ctx, func(ctx context.Context) error {
				flow := auth.NewFlow(&termAuth{phone: phone, in: bufio.NewReader(os.Stdin)}, auth.SendCodeOptions{})
				if err := client.Auth().IfNecessary(ctx, flow); err != nil {
					return fmt.Errorf("sign in: %w", err)
				}

				self, err := client.Self(ctx)
				if err != nil {
					return fmt.Errorf("fetch account: %w", err)
				}
				name := strings.TrimSpace(self.FirstName + " " + self.LastName)
				fmt.Printf("Signed in as %s (id %d)\n", name, self.ID)

				if asString {
					raw, err := mem.LoadSession(ctx)
					if err != nil {
						return fmt.Errorf("export session: %w", err)
					}
					fmt.Println("\nSession string (set as TELEGRAM_SESSION_STRING, keep it secret):")
					fmt.Println(base64.StdEncoding.EncodeToString(raw))
				} else {
					fmt.Printf("Session saved to %s (set as TELEGRAM_SESSION_FILE)\n", sessionPath)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "", "Phone number in international format (prompted if omitted)")
	cmd.Flags().BoolVar(&asString, "string", false, "Print a session string instead of writing a file")
	cmd.Flags().StringVar(&sessionPath, "session", "", "Session file path (default: TELEGRAM_SESSION_FILE or ./tgbot.session)")
	return cmd
}

// termAuth drives the interactive sign-in from the terminal. The 2FA
// password is read without echo.
type termAuth struct {
	phone string
	in    *bufio.Reader
}

func (a *termAuth) Phone(ctx context.Context) (string, error) {
	if a.phone != "" {
		return a.phone, nil
	}
	return a.prompt("Phone number (international format): ")
}

func (a *termAuth) Code(ctx context.Context, _ *tg.AuthSentCode) (string, error) {
	return a.prompt("Login code: ")
}

func (a *termAuth) Password(ctx context.Context) (string, error) {
	fmt.Print("2FA password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (a *termAuth) AcceptTermsOfService(ctx context.Context, _ tg.HelpTermsOfService) error {
	return nil
}

func (a *termAuth) SignUp(ctx context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errors.New("this phone has no Telegram account; create it in a Telegram app first")
}

func (a *termAuth) prompt(label string) (string, error) {
	fmt.Print(label)
	line, err := a.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
