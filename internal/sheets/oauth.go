package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

const authTimeout = 5 * time.Minute

// ErrAuthorization is returned when the browser flow does not yield a code.
var ErrAuthorization = errors.New("authorization failed")

// OAuth2Config holds the settings for obtaining a refresh token interactively.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	// TokenFile is where the token is cached between runs.
	TokenFile string
	// ListenAddr is the callback listener address, localhost:8080 by default.
	ListenAddr string
	// Open is called with the consent URL; it logs the URL when nil.
	Open func(url string)
}

func oauthClientConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
}

// GetOrCreateToken loads the cached token, refreshing it when expired, or runs
// the browser consent flow when no cached token exists.
func GetOrCreateToken(ctx context.Context, config OAuth2Config) (*oauth2.Token, error) {
	if config.TokenFile != "" {
		token, err := LoadToken(config.TokenFile)
		if err == nil {
			slog.Debug("loaded cached sheets token", "file", config.TokenFile)
			return refreshIfNeeded(ctx, config, token)
		}
		slog.Info("no cached sheets token, starting consent flow")
	}

	return Authenticate(ctx, config)
}

// Authenticate runs the OAuth2 consent flow against a local callback listener.
func Authenticate(ctx context.Context, config OAuth2Config) (*oauth2.Token, error) {
	addr := config.ListenAddr
	if addr == "" {
		addr = "localhost:8080"
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback listener: %w", err)
	}

	oauthConfig := oauthClientConfig(config.ClientID, config.ClientSecret, "http://"+listener.Addr().String()+"/callback")
	state := uuid.NewString()

	codes := make(chan string, 1)
	failures := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			failures <- fmt.Errorf("%w: state mismatch", ErrAuthorization)
			return
		}
		code := query.Get("code")
		if code == "" {
			http.Error(w, "no authorization code received", http.StatusBadRequest)
			failures <- fmt.Errorf("%w: no authorization code received", ErrAuthorization)
			return
		}
		_, _ = fmt.Fprintln(w, "Authentication complete. You can close this window.")
		codes <- code
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			failures <- fmt.Errorf("callback server: %w", serveErr)
		}
	}()
	defer func() {
		if shutdownErr := server.Shutdown(context.Background()); shutdownErr != nil {
			slog.Warn("error shutting down callback server", "error", shutdownErr)
		}
	}()

	authURL := oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	if config.Open != nil {
		config.Open(authURL)
	} else {
		slog.Info("visit this URL to authorize Google Sheets access", "url", authURL)
	}

	var code string
	select {
	case code = <-codes:
	case err := <-failures:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(authTimeout):
		return nil, fmt.Errorf("%w: no response within %s", ErrAuthorization, authTimeout)
	}

	token, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if config.TokenFile != "" {
		if err := SaveToken(config.TokenFile, token); err != nil {
			slog.Warn("failed to cache sheets token", "error", err, "file", config.TokenFile)
		}
	}

	return token, nil
}

func refreshIfNeeded(ctx context.Context, config OAuth2Config, token *oauth2.Token) (*oauth2.Token, error) {
	if token.Valid() {
		return token, nil
	}

	fresh, err := oauthClientConfig(config.ClientID, config.ClientSecret, "").TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	if config.TokenFile != "" {
		if err := SaveToken(config.TokenFile, fresh); err != nil {
			slog.Warn("failed to cache refreshed token", "error", err)
		}
	}

	return fresh, nil
}

// LoadToken reads a cached token.
func LoadToken(tokenFile string) (*oauth2.Token, error) {
	f, err := os.Open(tokenFile) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return token, nil
}

// SaveToken caches a token with owner-only permissions.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	return nil
}
