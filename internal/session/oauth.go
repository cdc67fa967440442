package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Google sign-in scopes.
var SignInScopes = []string{"openid", "email", "profile"}

const callbackPath = "/callback"

// LoopbackFlow runs an OAuth2 authorization-code flow with a local callback server.
type LoopbackFlow struct {
	// Config is copied; its RedirectURL is replaced with the callback address.
	Config *oauth2.Config
	// Announce receives the URL the user must open. Defaults to logging it.
	Announce func(authURL string)
	// Port for the callback listener. Zero picks a free port.
	Port    int
	Timeout time.Duration
}

// Run waits for the user to authorize and exchanges the code for a token.
func (f *LoopbackFlow) Run(ctx context.Context, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", f.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}

	cfg := *f.Config
	cfg.RedirectURL = fmt.Sprintf("http://%s%s", listener.Addr().String(), callbackPath)
	state := uuid.NewString()

	codeChan := make(chan string, 1)
	errorChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		code := q.Get("code")
		if code == "" {
			reason := q.Get("error")
			if reason == "" {
				reason = "no authorization code received"
			}
			select {
			case errorChan <- fmt.Errorf("authorization failed: %s", reason):
			default:
			}
			_, _ = fmt.Fprint(w, `<html><body>
				<h1>Authentication Failed</h1>
				<p>No authorization code received. Please try again.</p>
			</body></html>`)
			return
		}

		select {
		case codeChan <- code:
		default:
		}
		_, _ = fmt.Fprint(w, `<html><body>
			<h1>Authentication Successful!</h1>
			<p>You can close this window and return to the terminal.</p>
			<script>window.setTimeout(function(){window.close();}, 3000);</script>
		</body></html>`)
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errorChan <- fmt.Errorf("callback server failed: %w", err):
			default:
			}
		}
	}()
	defer func() {
		if err := server.Shutdown(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("Error shutting down callback server", "error", err)
		}
	}()

	authURL := cfg.AuthCodeURL(state, opts...)
	if f.Announce != nil {
		f.Announce(authURL)
	} else {
		slog.Info("Please visit this URL to authenticate", "url", authURL)
	}

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var code string
	select {
	case code = <-codeChan:
		slog.Debug("Received authorization code")
	case err := <-errorChan:
		return nil, err
	case <-timer.C:
		return nil, fmt.Errorf("authentication timeout - no response received within %s", timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}

// GoogleSignIn runs the interactive Google sign-in and returns the ID token.
func GoogleSignIn(ctx context.Context, clientID, clientSecret string, port int, announce func(string)) (string, error) {
	flow := &LoopbackFlow{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       SignInScopes,
		},
		Port:     port,
		Announce: announce,
	}
	return signIn(ctx, flow)
}

func signIn(ctx context.Context, flow *LoopbackFlow) (string, error) {
	token, err := flow.Run(ctx)
	if err != nil {
		return "", err
	}
	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return "", errors.New("identity provider returned no id_token")
	}
	return idToken, nil
}
