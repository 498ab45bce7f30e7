// Package app wires configuration, credentials and the box client together
// for the CLI commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/box-client/internal/config"
	"github.com/tonimelisma/box-client/internal/logger"
	"github.com/tonimelisma/box-client/internal/session"
	"github.com/tonimelisma/box-client/pkg/box"
	"golang.org/x/oauth2"
)

// ErrLoginPending is returned while a started login waits for its
// authorization code.
var ErrLoginPending = errors.New("login pending")

// App is what a command needs to talk to Box.
type App struct {
	Config   *config.Configuration
	Settings config.Settings
	SDK      SDK
	Logger   logger.Logger
}

// NewApp loads the configuration and builds an authenticated client for
// the configured auth mode.
func NewApp(cmd *cobra.Command) (*App, error) {
	cfg, err := config.LoadOrCreate()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	settings, err := cfg.Settings()
	if err != nil {
		return nil, fmt.Errorf("resolving configuration: %w", err)
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		settings.Debug = true
	}

	a := &App{
		Config:   cfg,
		Settings: settings,
		Logger:   logger.NewDefaultLogger(settings.Debug, logger.Format(settings.LogFormat)).With("app", "box-client"),
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ts, err := a.tokenSource(ctx)
	if err != nil {
		return nil, err
	}
	client := box.NewClient(ctx, ts, a.Logger, a.clientOptions()...)
	a.Logger.Debug("box client ready", "base_url", client.BaseURL(), "auth_mode", string(settings.AuthMode))
	a.SDK = client
	return a, nil
}

func (a *App) clientOptions() []box.Option {
	opts := []box.Option{box.WithTimeout(a.Settings.HTTP.Timeout)}
	if a.Settings.BaseURL != "" {
		opts = append(opts, box.WithBaseURL(a.Settings.BaseURL))
	}
	if a.Settings.UploadURL != "" {
		opts = append(opts, box.WithUploadBaseURL(a.Settings.UploadURL))
	}
	return opts
}

// OAuthConfig returns the authorization code flow configuration.
func (a *App) OAuthConfig() *box.OAuthConfig {
	return OAuthConfig(a.Settings)
}

// OAuthConfig builds the authorization code flow configuration from s.
func OAuthConfig(s config.Settings) *box.OAuthConfig {
	return box.NewOAuthConfig(s.ClientID, s.ClientSecret, s.RedirectURL, box.DefaultEndpoints())
}

func (a *App) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	s := a.Settings
	a.Logger.Debug("building token source", "mode", s.AuthMode)

	switch s.AuthMode {
	case config.AuthToken:
		if s.AccessToken == "" {
			return nil, fmt.Errorf("%w: no developer token configured", box.ErrReauthRequired)
		}
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: s.AccessToken, TokenType: "Bearer"}), nil

	case config.AuthCCG:
		return box.NewCCGTokenSource(ctx, box.CCGConfig{
			ClientID:     s.ClientID,
			ClientSecret: s.ClientSecret,
			SubjectType:  s.SubjectType,
			SubjectID:    s.SubjectID,
		})

	case config.AuthJWT:
		if s.JWTKeyFile == "" {
			return nil, fmt.Errorf("%w: jwt_key_file is not configured", box.ErrInvalidInput)
		}
		pemData, err := os.ReadFile(s.JWTKeyFile)
		if err != nil {
			return nil, fmt.Errorf("reading JWT private key: %w", err)
		}
		key, err := box.ParseJWTPrivateKey(pemData)
		if err != nil {
			return nil, err
		}
		return box.NewJWTTokenSource(ctx, box.JWTConfig{
			ClientID:     s.ClientID,
			ClientSecret: s.ClientSecret,
			SubjectType:  s.SubjectType,
			SubjectID:    s.SubjectID,
			KeyID:        s.JWTKeyID,
			PrivateKey:   key,
		})

	default:
		return a.oauthTokenSource(ctx)
	}
}

func (a *App) oauthTokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if a.Config.Token.AccessToken == "" {
		if mgr, err := session.NewManager(); err == nil {
			if pending, _ := mgr.LoadAuthState(); pending != nil {
				return nil, fmt.Errorf("%w: open %s and then run 'box-client auth complete <redirect-url>'", ErrLoginPending, pending.AuthURL)
			}
		}
		return nil, box.ErrReauthRequired
	}

	tok := a.Config.Token
	base := box.TokenSource(ctx, a.OAuthConfig(), &tok)
	onNewToken := func(t *oauth2.Token) error {
		return a.Config.UpdateToken(box.Token(*t))
	}
	return newPersistingTokenSource(base, (*oauth2.Token)(&tok), onNewToken, a.Logger), nil
}

// GetMe fetches the authenticated user.
func (a *App) GetMe(ctx context.Context) (box.User, error) {
	return a.SDK.GetCurrentUser(ctx)
}

// Logout clears stored credentials and any pending login.
func Logout(cfg *config.Configuration, mgr *session.Manager) error {
	cfg.ClearCredentials()
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("could not clear token: %w", err)
	}
	if mgr != nil {
		if err := mgr.DeleteAuthState(); err != nil {
			return fmt.Errorf("could not delete pending login: %w", err)
		}
	}
	return nil
}
