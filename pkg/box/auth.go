// Package box (auth.go) obtains OAuth2 tokens for the Box API. Three flows
// are supported: the authorization code grant with PKCE for interactive
// users, the client credentials grant (CCG) for server applications, and
// JWT server authentication with an RSA key pair. Each flow yields an
// oauth2.TokenSource for NewClient.
package box

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	cv "github.com/nirasan/go-oauth-pkce-code-verifier"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Subject types for CCG and JWT authentication.
const (
	SubjectEnterprise = "enterprise"
	SubjectUser       = "user"
)

const (
	jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	// jwtLifetime is the longest assertion lifetime the token endpoint
	// accepts.
	jwtLifetime = 60 * time.Second
)

// OAuthConfig is the configuration of the interactive authorization code
// flow.
type OAuthConfig oauth2.Config

// Endpoints are the OAuth2 endpoints of the service.
type Endpoints struct {
	AuthURL  string
	TokenURL string
}

// DefaultEndpoints returns the production endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{AuthURL: DefaultAuthURL, TokenURL: DefaultTokenURL}
}

// NewOAuthConfig builds the configuration of the authorization code flow.
// An empty redirectURL uses the one registered with the application.
func NewOAuthConfig(clientID, clientSecret, redirectURL string, ep Endpoints) *OAuthConfig {
	return &OAuthConfig{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:   ep.AuthURL,
			TokenURL:  ep.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// StartAuthentication begins the authorization code flow with PKCE. The
// user opens authURL; codeVerifier and state must be kept until the code
// comes back and then be passed to CompleteAuthentication.
//
// Example:
//
//	cfg := box.NewOAuthConfig(clientID, clientSecret, "", box.DefaultEndpoints())
//	authURL, verifier, state, err := box.StartAuthentication(ctx, cfg)
func StartAuthentication(ctx context.Context, cfg *OAuthConfig) (authURL, codeVerifier, state string, err error) {
	if ctx == nil {
		return "", "", "", fmt.Errorf("context must not be nil for StartAuthentication")
	}
	if cfg == nil || cfg.ClientID == "" {
		return "", "", "", invalidInput("client id is required")
	}

	verifier, err := cv.CreateCodeVerifier()
	if err != nil {
		return "", "", "", fmt.Errorf("could not create PKCE code verifier: %w", err)
	}
	codeVerifier = verifier.String()
	state = uuid.NewString()

	authURL = (*oauth2.Config)(cfg).AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", verifier.CodeChallengeS256()),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
	return authURL, codeVerifier, state, nil
}

// CompleteAuthentication exchanges the authorization code for a token. The
// token's Expiry is derived from expires_in when the exchange left it
// unset, so that token sources refresh it in time.
func CompleteAuthentication(ctx context.Context, cfg *OAuthConfig, code, verifier string) (*Token, error) {
	if code == "" {
		return nil, invalidInput("authorization code is required")
	}
	if verifier == "" {
		return nil, invalidInput("code verifier is required")
	}

	token, err := (*oauth2.Config)(cfg).Exchange(ctx, code, oauth2.SetAuthURLParam("code_verifier", verifier))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange authorization code for token: %w", ErrOperationFailed, classifyTransportError(err))
	}
	setExpiry(token)
	return (*Token)(token), nil
}

// TokenSource returns a source that refreshes tok through cfg.
func TokenSource(ctx context.Context, cfg *OAuthConfig, tok *Token) oauth2.TokenSource {
	return (*oauth2.Config)(cfg).TokenSource(ctx, (*oauth2.Token)(tok))
}

func setExpiry(token *oauth2.Token) {
	if !token.Expiry.IsZero() {
		return
	}
	switch v := token.Extra("expires_in").(type) {
	case float64:
		token.Expiry = time.Now().Add(time.Duration(v) * time.Second)
	case string:
		if d, err := time.ParseDuration(v + "s"); err == nil {
			token.Expiry = time.Now().Add(d)
		}
	}
}

// CCGConfig configures client credentials grant authentication.
type CCGConfig struct {
	ClientID     string
	ClientSecret string
	// SubjectType is SubjectEnterprise or SubjectUser.
	SubjectType string
	SubjectID   string
	TokenURL    string
}

func validateSubject(subjectType, subjectID string) error {
	if subjectType != SubjectEnterprise && subjectType != SubjectUser {
		return invalidInput("subject type must be %q or %q, got %q", SubjectEnterprise, SubjectUser, subjectType)
	}
	if subjectID == "" {
		return invalidInput("subject id is required")
	}
	return nil
}

// NewCCGTokenSource returns a token source for the client credentials
// grant. Tokens are fetched lazily and reused until they expire.
func NewCCGTokenSource(ctx context.Context, cfg CCGConfig) (oauth2.TokenSource, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, invalidInput("client id and secret are required")
	}
	if err := validateSubject(cfg.SubjectType, cfg.SubjectID); err != nil {
		return nil, err
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	params := url.Values{}
	params.Set("box_subject_type", cfg.SubjectType)
	params.Set("box_subject_id", cfg.SubjectID)

	conf := clientcredentials.Config{
		ClientID:       cfg.ClientID,
		ClientSecret:   cfg.ClientSecret,
		TokenURL:       tokenURL,
		EndpointParams: params,
		AuthStyle:      oauth2.AuthStyleInParams,
	}
	return conf.TokenSource(ctx), nil
}

// JWTConfig configures JWT server authentication.
type JWTConfig struct {
	ClientID     string
	ClientSecret string
	SubjectType  string
	SubjectID    string
	// KeyID is the id of the public key registered with the application.
	KeyID      string
	PrivateKey *rsa.PrivateKey
	TokenURL   string
}

// ParseJWTPrivateKey reads an unencrypted PEM encoded RSA private key.
func ParseJWTPrivateKey(pemData []byte) (*rsa.PrivateKey, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemData)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing private key: %w", ErrInvalidInput, err)
	}
	return key, nil
}

// NewJWTTokenSource returns a token source that signs a fresh assertion
// whenever the current access token expires.
func NewJWTTokenSource(ctx context.Context, cfg JWTConfig) (oauth2.TokenSource, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, invalidInput("client id and secret are required")
	}
	if cfg.PrivateKey == nil {
		return nil, invalidInput("private key is required")
	}
	if err := validateSubject(cfg.SubjectType, cfg.SubjectID); err != nil {
		return nil, err
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	return oauth2.ReuseTokenSource(nil, &jwtSource{ctx: ctx, cfg: cfg}), nil
}

type jwtSource struct {
	ctx context.Context
	cfg JWTConfig
}

// assertion signs the RS256 grant assertion.
func (s *jwtSource) assertion(now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":          s.cfg.ClientID,
		"sub":          s.cfg.SubjectID,
		"box_sub_type": s.cfg.SubjectType,
		"aud":          s.cfg.TokenURL,
		"jti":          uuid.NewString(),
		"exp":          jwt.NewNumericDate(now.Add(jwtLifetime)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if s.cfg.KeyID != "" {
		token.Header["kid"] = s.cfg.KeyID
	}
	signed, err := token.SignedString(s.cfg.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("signing assertion: %w", err)
	}
	return signed, nil
}

func (s *jwtSource) Token() (*oauth2.Token, error) {
	assertion, err := s.assertion(time.Now())
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("assertion", assertion)
	form.Set("client_id", s.cfg.ClientID)
	form.Set("client_secret", s.cfg.ClientSecret)

	req, err := http.NewRequestWithContext(s.ctx, http.MethodPost, s.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	hc, ok := s.ctx.Value(oauth2.HTTPClient).(*http.Client)
	if !ok || hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	res, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting token: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var payload struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		_ = json.Unmarshal(body, &payload)
		return nil, &oauth2.RetrieveError{
			Response:         res,
			Body:             body,
			ErrorCode:        payload.Error,
			ErrorDescription: payload.ErrorDescription,
		}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: token response: %w", ErrDecodingFailed, err)
	}
	if payload.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response has no access_token", ErrDecodingFailed)
	}

	tok := &oauth2.Token{AccessToken: payload.AccessToken, TokenType: payload.TokenType}
	if payload.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	}
	return tok, nil
}
