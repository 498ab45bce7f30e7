package app

import (
	"sync"

	"github.com/tonimelisma/box-client/internal/logger"
	"golang.org/x/oauth2"
)

// persistingTokenSource wraps an oauth2.TokenSource and hands every
// refreshed token to onNewToken so it survives the process.
type persistingTokenSource struct {
	base       oauth2.TokenSource
	mu         sync.Mutex
	lastToken  *oauth2.Token
	onNewToken func(token *oauth2.Token) error
	logger     logger.Logger
}

func newPersistingTokenSource(base oauth2.TokenSource, initialToken *oauth2.Token, onNew func(token *oauth2.Token) error, l logger.Logger) *persistingTokenSource {
	if l == nil {
		l = logger.NoopLogger{}
	}
	return &persistingTokenSource{
		base:       base,
		lastToken:  initialToken,
		onNewToken: onNew,
		logger:     l,
	}
}

// Token returns a token from the underlying source. A failure to persist a
// refreshed token is logged; the token is still returned.
func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	newToken, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	if s.lastToken == nil || s.lastToken.AccessToken != newToken.AccessToken {
		s.lastToken = newToken
		s.logger.Debug("access token refreshed", "expiry", newToken.Expiry)
		if s.onNewToken != nil {
			if err := s.onNewToken(newToken); err != nil {
				s.logger.Warn("could not persist refreshed token", "error", err)
			}
		}
	}

	return newToken, nil
}
