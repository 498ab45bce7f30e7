// Package cmd (auth.go) holds the authentication commands. Logging in uses
// the OAuth authorization code flow with PKCE in two steps: 'auth login'
// prints the authorization URL and 'auth complete' exchanges the code the
// browser was redirected with.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/box-client/internal/app"
	"github.com/tonimelisma/box-client/internal/config"
	"github.com/tonimelisma/box-client/internal/session"
	"github.com/tonimelisma/box-client/internal/ui"
	"github.com/tonimelisma/box-client/pkg/box"
)

// oauthEndpoints are the authorization server endpoints used by login.
var oauthEndpoints = box.DefaultEndpoints()

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication with Box",
	Long:  `Provides subcommands to log in, finish a pending login, log out and check the authentication status.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Start an OAuth login",
	Long: `Starts the OAuth 2.0 authorization code flow with PKCE.
Open the printed URL in a browser, approve access, then pass the URL the
browser was redirected to to 'auth complete'. The full URL is required so
its state parameter can be matched against the pending login.
A started login must be completed within ten minutes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, mgr, err := loadAuthStores()
		if err != nil {
			return err
		}
		return authLoginLogic(cmd.Context(), cfg, mgr)
	},
}

var authCompleteCmd = &cobra.Command{
	Use:   "complete <redirect-url>",
	Short: "Finish a pending OAuth login",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, mgr, err := loadAuthStores()
		if err != nil {
			return err
		}
		return authCompleteLogic(cmd.Context(), cfg, mgr, args[0])
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear stored credentials",
	Long:  `Removes the stored OAuth token, the developer token and any pending login.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, mgr, err := loadAuthStores()
		if err != nil {
			return err
		}
		if err := app.Logout(cfg, mgr); err != nil {
			return fmt.Errorf("logout failed: %w", err)
		}
		fmt.Println("You have been logged out.")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display the current authentication status",
	Args:  cobra.NoArgs,
	RunE:  authStatusLogic,
}

func loadAuthStores() (*config.Configuration, *session.Manager, error) {
	cfg, err := config.LoadOrCreate()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	mgr, err := session.NewManager()
	if err != nil {
		return nil, nil, fmt.Errorf("creating session manager: %w", err)
	}
	return cfg, mgr, nil
}

func oauthConfig(cfg *config.Configuration) (*box.OAuthConfig, error) {
	s, err := cfg.Settings()
	if err != nil {
		return nil, err
	}
	if s.ClientID == "" {
		return nil, fmt.Errorf("%w: no client id configured, set client_id in %s or BOX_CLIENT_ID", box.ErrInvalidInput, configPathHint())
	}
	return box.NewOAuthConfig(s.ClientID, s.ClientSecret, s.RedirectURL, oauthEndpoints), nil
}

func configPathHint() string {
	if p, err := config.Path(); err == nil {
		return p
	}
	return "the config file"
}

func authLoginLogic(ctx context.Context, cfg *config.Configuration, mgr *session.Manager) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Token.AccessToken != "" {
		fmt.Println("You are already logged in. Run 'box-client auth logout' first to switch accounts.")
		return nil
	}
	pending, err := mgr.LoadAuthState()
	if err != nil {
		return fmt.Errorf("checking for a pending login: %w", err)
	}
	if pending != nil {
		fmt.Printf("A login is already pending. Open %s and then run 'box-client auth complete <redirect-url>'.\n", pending.AuthURL)
		fmt.Println("Run 'box-client auth logout' to cancel it and start over.")
		return nil
	}

	oc, err := oauthConfig(cfg)
	if err != nil {
		return err
	}
	authURL, verifier, state, err := box.StartAuthentication(ctx, oc)
	if err != nil {
		return fmt.Errorf("login initiation failed: %w", err)
	}
	if err := mgr.SaveAuthState(&session.AuthState{
		CodeVerifier: verifier,
		State:        state,
		AuthURL:      authURL,
		RedirectURL:  oc.RedirectURL,
		CreatedAt:    time.Now(),
	}); err != nil {
		return fmt.Errorf("saving pending login: %w", err)
	}

	fmt.Printf("To log in, open this URL in a web browser:\n%s\n\n", authURL)
	fmt.Printf("Then run 'box-client auth complete <redirect-url>' within %d minutes.\n", int(session.AuthStateTTL.Minutes()))
	return nil
}

// codeFromRedirect extracts the authorization code from the URL the browser
// was redirected to. The URL's state must match the pending login, so a bare
// code is refused.
func codeFromRedirect(input, wantState string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("%w: the redirect URL is required", box.ErrInvalidInput)
	}
	if !strings.Contains(input, "?") {
		return "", fmt.Errorf("%w: pass the full redirect URL, a bare code cannot be matched to the pending login", box.ErrInvalidInput)
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("%w: parsing redirect URL: %v", box.ErrInvalidInput, err)
	}
	q := u.Query()
	if e := q.Get("error"); e != "" {
		return "", fmt.Errorf("authorization was denied: %s %s", e, q.Get("error_description"))
	}
	if q.Get("state") != wantState {
		return "", fmt.Errorf("%w: state mismatch, the redirect does not belong to the pending login", box.ErrInvalidInput)
	}
	code := q.Get("code")
	if code == "" {
		return "", fmt.Errorf("%w: redirect URL carries no code", box.ErrInvalidInput)
	}
	return code, nil
}

func authCompleteLogic(ctx context.Context, cfg *config.Configuration, mgr *session.Manager, input string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	pending, err := mgr.LoadAuthState()
	if err != nil {
		return fmt.Errorf("loading pending login: %w", err)
	}
	if pending == nil {
		return errors.New("no login is pending (or it expired), run 'box-client auth login' first")
	}

	code, err := codeFromRedirect(input, pending.State)
	if err != nil {
		return err
	}
	oc, err := oauthConfig(cfg)
	if err != nil {
		return err
	}
	if pending.RedirectURL != "" {
		oc.RedirectURL = pending.RedirectURL
	}

	tok, err := box.CompleteAuthentication(ctx, oc, code, pending.CodeVerifier)
	if err != nil {
		return fmt.Errorf("completing login: %w", err)
	}
	if err := cfg.UpdateToken(*tok); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	if err := mgr.DeleteAuthState(); err != nil {
		return fmt.Errorf("removing pending login: %w", err)
	}
	ui.PrintSuccess("Login successful!\n")
	return nil
}

func authStatusLogic(cmd *cobra.Command, args []string) error {
	a, err := app.NewApp(cmd)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrLoginPending):
			fmt.Println(err.Error())
			return nil
		case errors.Is(err, box.ErrReauthRequired):
			fmt.Println("You are not logged in. Run 'box-client auth login'.")
			return nil
		}
		return fmt.Errorf("checking authentication status: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	user, err := a.GetMe(ctx)
	if err != nil {
		if errors.Is(err, box.ErrReauthRequired) {
			fmt.Println("Your credentials were rejected. Run 'box-client auth logout' and log in again.")
			return nil
		}
		return fmt.Errorf("could not retrieve user information: %w", err)
	}
	fmt.Printf("Authentication mode: %s\n", a.Settings.AuthMode)
	ui.DisplayUser(user)
	return nil
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authCompleteCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
}
