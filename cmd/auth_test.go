package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonimelisma/box-client/internal/boxfake"
	"github.com/tonimelisma/box-client/internal/config"
	"github.com/tonimelisma/box-client/internal/session"
	"github.com/tonimelisma/box-client/pkg/box"
	"golang.org/x/oauth2"
)

// useTokenServer points the login endpoints at a test authorization server
// and returns the form values of the last token request.
func useTokenServer(t *testing.T) *url.Values {
	t.Helper()
	var last url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		last = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "final-token",
			"refresh_token": "refresh-token",
			"token_type":    "bearer",
			"expires_in":    3600,
		})
	}))
	t.Cleanup(server.Close)

	old := oauthEndpoints
	oauthEndpoints = box.Endpoints{AuthURL: server.URL + "/authorize", TokenURL: server.URL + "/token"}
	t.Cleanup(func() { oauthEndpoints = old })
	return &last
}

func loadStores(t *testing.T) (*config.Configuration, *session.Manager) {
	t.Helper()
	cfg, mgr, err := loadAuthStores()
	require.NoError(t, err)
	return cfg, mgr
}

func TestCodeFromRedirect(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "bare code", input: " abc123 ", wantErr: true},
		{name: "redirect URL", input: " https://localhost/cb?code=abc&state=s1 ", want: "abc"},
		{name: "missing state", input: "https://localhost/cb?code=abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "state mismatch", input: "https://localhost/cb?code=abc&state=other", wantErr: true},
		{name: "no code", input: "https://localhost/cb?state=s1", wantErr: true},
		{name: "denied", input: "https://localhost/cb?error=access_denied&state=s1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := codeFromRedirect(tt.input, "s1")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthLogin(t *testing.T) {
	t.Run("requires a client id", func(t *testing.T) {
		setupAuthTest(t)
		cfg, mgr := loadStores(t)

		var err error
		captureOutput(t, func() { err = authLoginLogic(context.Background(), cfg, mgr) })
		assert.True(t, errors.Is(err, box.ErrInvalidInput), "got %v", err)
	})

	t.Run("prints the authorization URL and saves the pending login", func(t *testing.T) {
		setupAuthTest(t)
		useTokenServer(t)
		t.Setenv("BOX_CLIENT_ID", "cid")
		cfg, mgr := loadStores(t)

		var err error
		output := captureOutput(t, func() { err = authLoginLogic(context.Background(), cfg, mgr) })
		require.NoError(t, err)
		assert.Contains(t, output, "/authorize?")
		assert.Contains(t, output, "code_challenge_method=S256")

		pending, err := mgr.LoadAuthState()
		require.NoError(t, err)
		require.NotNil(t, pending)
		assert.NotEmpty(t, pending.CodeVerifier)
		assert.Contains(t, output, pending.State)

		output = captureOutput(t, func() { err = authLoginLogic(context.Background(), cfg, mgr) })
		require.NoError(t, err)
		assert.Contains(t, output, "already pending")
	})

	t.Run("refuses when already logged in", func(t *testing.T) {
		setupAuthTest(t)
		cfg, mgr := loadStores(t)
		cfg.Token.AccessToken = "existing"

		var err error
		output := captureOutput(t, func() { err = authLoginLogic(context.Background(), cfg, mgr) })
		require.NoError(t, err)
		assert.Contains(t, output, "already logged in")
	})
}

func TestAuthComplete(t *testing.T) {
	t.Run("exchanges the code and stores the token", func(t *testing.T) {
		setupAuthTest(t)
		form := useTokenServer(t)
		t.Setenv("BOX_CLIENT_ID", "cid")
		t.Setenv("BOX_CLIENT_SECRET", "secret")
		cfg, mgr := loadStores(t)

		var err error
		captureOutput(t, func() { err = authLoginLogic(context.Background(), cfg, mgr) })
		require.NoError(t, err)
		pending, err := mgr.LoadAuthState()
		require.NoError(t, err)
		require.NotNil(t, pending)

		redirect := "https://localhost/callback?code=the-code&state=" + url.QueryEscape(pending.State)
		output := captureOutput(t, func() { err = authCompleteLogic(context.Background(), cfg, mgr, redirect) })
		require.NoError(t, err)
		assert.Contains(t, output, "Login successful!")

		assert.Equal(t, "the-code", form.Get("code"))
		assert.Equal(t, pending.CodeVerifier, form.Get("code_verifier"))

		loaded, err := config.Load()
		require.NoError(t, err)
		assert.Equal(t, "final-token", loaded.Token.AccessToken)
		assert.Equal(t, "refresh-token", loaded.Token.RefreshToken)
		assert.WithinDuration(t, time.Now().Add(time.Hour), loaded.Token.Expiry, time.Minute)

		pending, err = mgr.LoadAuthState()
		require.NoError(t, err)
		assert.Nil(t, pending)
	})

	t.Run("rejects a foreign state", func(t *testing.T) {
		setupAuthTest(t)
		useTokenServer(t)
		t.Setenv("BOX_CLIENT_ID", "cid")
		cfg, mgr := loadStores(t)

		var err error
		captureOutput(t, func() { err = authLoginLogic(context.Background(), cfg, mgr) })
		require.NoError(t, err)

		err = authCompleteLogic(context.Background(), cfg, mgr, "https://localhost/callback?code=x&state=forged")
		assert.True(t, errors.Is(err, box.ErrInvalidInput), "got %v", err)
	})

	t.Run("refuses a bare code", func(t *testing.T) {
		setupAuthTest(t)
		form := useTokenServer(t)
		t.Setenv("BOX_CLIENT_ID", "cid")
		cfg, mgr := loadStores(t)

		var err error
		captureOutput(t, func() { err = authLoginLogic(context.Background(), cfg, mgr) })
		require.NoError(t, err)

		err = authCompleteLogic(context.Background(), cfg, mgr, "the-code")
		assert.True(t, errors.Is(err, box.ErrInvalidInput), "got %v", err)
		assert.Empty(t, form.Get("code"), "nothing may be exchanged without a state check")
		pending, err := mgr.LoadAuthState()
		require.NoError(t, err)
		assert.NotNil(t, pending, "the pending login stays usable")
	})

	t.Run("needs a pending login", func(t *testing.T) {
		setupAuthTest(t)
		cfg, mgr := loadStores(t)

		err := authCompleteLogic(context.Background(), cfg, mgr, "code")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "auth login")
	})
}

func TestAuthStatus(t *testing.T) {
	t.Run("reports logged out", func(t *testing.T) {
		setupAuthTest(t)

		output, err := execute(t, context.Background(), "auth", "status")
		require.NoError(t, err)
		assert.Contains(t, output, "You are not logged in")
	})

	t.Run("reports a pending login", func(t *testing.T) {
		setupAuthTest(t)
		_, mgr := loadStores(t)
		require.NoError(t, mgr.SaveAuthState(&session.AuthState{
			State:     "s",
			AuthURL:   "https://account.box.com/api/oauth2/authorize?state=s",
			CreatedAt: time.Now(),
		}))

		output, err := execute(t, context.Background(), "auth", "status")
		require.NoError(t, err)
		assert.Contains(t, output, "auth complete")
	})

	t.Run("shows the user for a developer token", func(t *testing.T) {
		setupAuthTest(t)
		fake := boxfake.New()
		t.Setenv("BOX_ACCESS_TOKEN", boxfake.DefaultToken)
		t.Setenv("BOX_BASE_URL", boxfake.BaseURL)
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, fake.HTTPClient())

		output, err := execute(t, ctx, "auth", "status")
		require.NoError(t, err)
		assert.Contains(t, output, "Authentication mode: token")
		assert.Contains(t, output, "Logged in as: Fake User")
	})

	t.Run("reports rejected credentials", func(t *testing.T) {
		setupAuthTest(t)
		fake := boxfake.New()
		t.Setenv("BOX_ACCESS_TOKEN", "revoked")
		t.Setenv("BOX_BASE_URL", boxfake.BaseURL)
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, fake.HTTPClient())

		output, err := execute(t, ctx, "auth", "status")
		require.NoError(t, err)
		assert.Contains(t, output, "credentials were rejected")
	})
}

func TestAuthLogout(t *testing.T) {
	setupAuthTest(t)
	cfg, mgr := loadStores(t)
	cfg.Token.AccessToken = "fake-token-for-logout"
	require.NoError(t, cfg.Save())
	require.NoError(t, mgr.SaveAuthState(&session.AuthState{State: "s", CreatedAt: time.Now()}))

	output, err := execute(t, context.Background(), "auth", "logout")
	require.NoError(t, err)
	assert.Contains(t, output, "You have been logged out")

	loaded, err := config.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded.Token.AccessToken)
	pending, err := mgr.LoadAuthState()
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestItemsCommandsRegistered(t *testing.T) {
	for _, name := range []string{"get", "ls", "mkdir", "rm", "cp", "mv", "rename", "describe", "share", "unshare", "download", "upload"} {
		cmd, _, err := rootCmd.Find([]string{"items", name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}
