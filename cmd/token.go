package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/portfolio-api/internal/spotify"
)

var (
	tokenClientID     string
	tokenClientSecret string
)

var tokenCmd = &cobra.Command{
	Use:   "spotify-token",
	Short: "Obtain a Spotify refresh token for the top-tracks endpoint",
	Long: `spotify-token runs the one-time authorization code flow: open the printed
URL, approve access, then paste the code (or the whole redirect URL) back here.
The printed refresh token goes into spotify.refresh_token or SPOTIFY_REFRESH_TOKEN.`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenClientID, "client-id", "", "Spotify client ID (overrides config)")
	tokenCmd.Flags().StringVar(&tokenClientSecret, "client-secret", "", "Spotify client secret (overrides config)")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if tokenClientID != "" {
		cfg.Spotify.ClientID = tokenClientID
	}
	if tokenClientSecret != "" {
		cfg.Spotify.ClientSecret = tokenClientSecret
	}

	auth, err := spotify.NewAuthorizer(
		cfg.Spotify.ClientID,
		cfg.Spotify.ClientSecret,
		cfg.Spotify.AuthURL,
		cfg.Spotify.TokenURL,
		cfg.Spotify.RedirectURI,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%w\nSet SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET or pass --client-id/--client-secret", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	return exchangeInteractive(ctx, auth, cmd.InOrStdin(), cmd.OutOrStdout())
}

type codeExchanger interface {
	AuthCodeURL() string
	RedirectURI() string
	Exchange(ctx context.Context, code string) (string, error)
}

func exchangeInteractive(ctx context.Context, auth codeExchanger, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "1. Make sure this redirect URI is listed in your Spotify app settings:")
	fmt.Fprintf(out, "   %s\n\n", auth.RedirectURI())
	fmt.Fprintln(out, "2. Open this URL in your browser and approve access:")
	fmt.Fprintf(out, "   %s\n\n", auth.AuthCodeURL())
	fmt.Fprint(out, "3. Paste the code or the full redirect URL: ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading code: %w", err)
	}
	code := spotify.ExtractCode(line)
	if code == "" {
		return errors.New("no authorization code entered")
	}

	refresh, err := auth.Exchange(ctx, code)
	if err != nil {
		if hint := exchangeHint(spotify.ErrorCode(err)); hint != "" {
			return fmt.Errorf("%w\nHint: %s", err, hint)
		}
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Refresh token:")
	fmt.Fprintln(out, refresh)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Store it as SPOTIFY_REFRESH_TOKEN or spotify.refresh_token.")
	return nil
}

func exchangeHint(code string) string {
	switch strings.ToLower(code) {
	case "invalid_grant":
		return "the code has expired or was already used; codes are single-use, run the command again"
	case "redirect_uri_mismatch":
		return "the redirect URI does not exactly match the one registered in the Spotify dashboard"
	case "invalid_client":
		return "check the client ID and secret"
	default:
		return ""
	}
}
