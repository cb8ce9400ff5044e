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

// DefaultCallbackAddr is where the local OAuth callback server listens.
const DefaultCallbackAddr = "localhost:8080"

// AuthTimeout bounds how long the browser consent flow may take.
const AuthTimeout = 5 * time.Minute

// OAuth2Config describes an installed-app OAuth2 client.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	TokenFile    string
	CallbackAddr string
}

func oauthConfig(clientID, clientSecret, redirect string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirect,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
}

// Authenticate runs the browser consent flow. The user visits the printed URL
// and Google redirects back to a short-lived local server carrying the code.
func Authenticate(ctx context.Context, cfg OAuth2Config) (*oauth2.Token, error) {
	addr := cfg.CallbackAddr
	if addr == "" {
		addr = DefaultCallbackAddr
	}
	oc := oauthConfig(cfg.ClientID, cfg.ClientSecret, "http://"+addr+"/callback")
	state := uuid.NewString()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			select {
			case errCh <- errors.New("no authorization code received"):
			default:
			}
			_, _ = fmt.Fprint(w, "<html><body><h1>Falha na autenticação</h1></body></html>")
			return
		}
		select {
		case codeCh <- code:
		default:
		}
		_, _ = fmt.Fprint(w, "<html><body><h1>Autenticação concluída</h1><p>Pode fechar esta janela.</p></body></html>")
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			select {
			case errCh <- serveErr:
			default:
			}
		}
	}()
	defer func() { _ = server.Shutdown(context.Background()) }()

	slog.Info("Google Sheets authentication required")
	slog.Info("Open this URL in your browser", "url", oc.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	var code string
	select {
	case code = <-codeCh:
	case err = <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(AuthTimeout):
		return nil, fmt.Errorf("authentication timed out after %s", AuthTimeout)
	}

	token, err := oc.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if cfg.TokenFile != "" {
		if err := SaveToken(cfg.TokenFile, token); err != nil {
			slog.Warn("Failed to save token", "error", err, "file", cfg.TokenFile)
		} else {
			slog.Info("Token saved", "file", cfg.TokenFile)
		}
	}
	return token, nil
}

// LoadToken reads a token previously written by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, fmt.Errorf("failed to decode token %s: %w", path, err)
	}
	return token, nil
}

// SaveToken writes token as JSON readable only by the current user.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
