package relay

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// User is the authenticated caller, when a verifiable bearer token was
// presented.
type User struct {
	Subject     string
	Email       string
	EmailDomain string
}

// Authenticator verifies optional bearer tokens against a JWKS endpoint.
// Every failure path degrades to anonymous.
type Authenticator struct {
	jwksURL string
	logger  *slog.Logger

	mu  sync.Mutex
	set jwk.Set
}

func NewAuthenticator(jwksURL string) *Authenticator {
	return &Authenticator{
		jwksURL: jwksURL,
		logger:  slog.With("component", "relay-auth"),
	}
}

// keySet fetches the JWKS on first use and caches it. Only a successful
// fetch is cached; a failed one is retried on the next caller, so a bad
// first request cannot pin every later one to anonymous.
func (a *Authenticator) keySet(ctx context.Context) (jwk.Set, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.set != nil {
		return a.set, nil
	}

	set, err := jwk.Fetch(ctx, a.jwksURL)
	if err != nil {
		return nil, err
	}
	a.set = set
	return set, nil
}

// Verify resolves the request's bearer token to a user, or nil when no
// token is present, no verification key is configured, or the token does
// not check out.
func (a *Authenticator) Verify(r *http.Request) *User {
	if a == nil || a.jwksURL == "" {
		return nil
	}
	if r.Header.Get("Authorization") == "" {
		return nil
	}

	keySet, err := a.keySet(r.Context())
	if err != nil {
		a.logger.Warn("failed to load jwks, treating caller as anonymous", "err", err)
		return nil
	}

	token, err := jwt.ParseRequest(r, jwt.WithKeySet(keySet))
	if err != nil {
		a.logger.Warn("bearer token rejected, treating caller as anonymous", "err", err)
		return nil
	}

	user := &User{}
	if sub, ok := token.Subject(); ok {
		user.Subject = sub
	}
	_ = token.Get("email", &user.Email)

	if at := strings.LastIndex(user.Email, "@"); at >= 0 {
		user.EmailDomain = user.Email[at+1:]
	}

	return user
}
