// Command oauth-init bootstraps the Microsoft Graph token file through the
// authorization-code flow. Run it once interactively; the worker refreshes
// the token on its own afterwards.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"

	"homespend/internal/source/graph"
)

func main() {
	_ = godotenv.Load()

	clientID := os.Getenv("MS_CLIENT_ID")
	if clientID == "" {
		log.Fatalf("set MS_CLIENT_ID")
	}
	clientSecret := os.Getenv("MS_CLIENT_SECRET")
	tenantID := os.Getenv("MS_TENANT_ID")

	tokenFile := os.Getenv("MS_TOKEN_FILE")
	if tokenFile == "" {
		tokenFile = "./data/ms_token.json"
	}

	// Start local server for redirect_uri http://localhost:8085/callback
	// The app registration must list this URI as an authorized redirect.
	redirectPort := os.Getenv("OAUTH_REDIRECT_PORT")
	if redirectPort == "" {
		redirectPort = "8085"
	}

	cfg := graph.OAuthConfig(clientID, clientSecret, tenantID)
	cfg.RedirectURL = "http://localhost:" + redirectPort + "/callback"

	codeCh := make(chan string, 1)
	srv := &http.Server{Addr: ":" + redirectPort}
	http.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if errStr := r.URL.Query().Get("error"); errStr != "" {
			http.Error(w, "OAuth error: "+errStr, http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		fmt.Fprintln(w, "You may close this window and return to the terminal.")
		codeCh <- code
		go func() { time.Sleep(500 * time.Millisecond); _ = srv.Close() }()
	})
	go func() { _ = srv.ListenAndServe() }()

	url := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Open this URL to authorize:\n%s\n", url)

	select {
	case code := <-codeCh:
		tok, err := cfg.Exchange(context.Background(), code)
		if err != nil {
			log.Fatalf("token exchange: %v", err)
		}
		if err := graph.SaveToken(tokenFile, tok); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Printf("Saved token to %s\n", tokenFile)
	case <-time.After(5 * time.Minute):
		log.Fatalf("authorization timed out")
	case <-signalChan():
		log.Fatalf("interrupted")
	}
}

func signalChan() <-chan os.Signal {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	return c
}
