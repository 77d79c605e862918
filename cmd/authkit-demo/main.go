// Command authkit-demo walks a desktop host through the full SDK surface:
// browser login over a loopback redirect, token persistence in SQLite,
// profile fetch, introspection, and logout.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-authkit/authkit"
	"github.com/jrsteele09/go-authkit/browser"
	"github.com/jrsteele09/go-authkit/events"
	"github.com/jrsteele09/go-authkit/storage/sqlitestore"
	"github.com/rs/zerolog"
)

type demoConfig struct {
	AuthKitURL string   `env:"AUTHKIT_URL,required"`
	ClientID   string   `env:"AUTHKIT_CLIENT_ID,required"`
	Scopes     []string `env:"AUTHKIT_SCOPES" envDefault:"openid,profile"`
	ListenAddr string   `env:"AUTHKIT_LISTEN" envDefault:"127.0.0.1:8910"`
	DBPath     string   `env:"AUTHKIT_DB" envDefault:"authkit-demo.db"`
	Passphrase string   `env:"AUTHKIT_PASSPHRASE"`
	Debug      bool     `env:"AUTHKIT_DEBUG"`
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error running demo: %s\n", err)
	}
}

func run() error {
	displayAppname("AuthKit")

	cfg, err := env.ParseAs[demoConfig]()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logLevel := zerolog.InfoLevel
	if cfg.Debug {
		logLevel = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(logLevel).With().Timestamp().Logger()

	store, err := sqlitestore.Open(cfg.DBPath, "authkit.")
	if err != nil {
		return fmt.Errorf("open token store: %w", err)
	}
	defer store.Close()

	redirectURI := "http://" + cfg.ListenAddr + "/callback"
	opener := &browser.LoopbackOpener{RedirectURI: redirectURI, Log: logger}

	client, err := authkit.New(authkit.Config{
		AuthKitURL:        cfg.AuthKitURL,
		ClientID:          cfg.ClientID,
		RedirectURI:       redirectURI,
		Scopes:            cfg.Scopes,
		UsePKCE:           true,
		AutoRefresh:       true,
		Storage:           store,
		SecureStorage:     cfg.Passphrase != "",
		StoragePassphrase: cfg.Passphrase,
		Debug:             cfg.Debug,
	},
		authkit.WithBrowser(opener),
		authkit.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("build client: %w", err)
	}

	client.Events().Subscribe(events.TokenRefreshed, func(events.Event) {
		logger.Info().Msg("access token refreshed")
	})
	client.Events().Subscribe(events.NetworkError, func(e events.Event) {
		logger.Warn().Err(e.Err).Msg("network error")
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if client.IsAuthenticated(ctx) {
		logger.Info().Msg("existing session found, skipping login")
	} else {
		logger.Info().Str("redirect_uri", redirectURI).Msg("starting browser login")
		loginCtx, loginCancel := context.WithTimeout(ctx, 2*time.Minute)
		defer loginCancel()
		if _, err := client.Login(loginCtx); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	user, err := client.CurrentUser(ctx, false)
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}
	fmt.Printf("\nLogged in as %s <%s>\n", user.Name, user.Email)
	fmt.Printf("Subject: %s\n", user.ID)
	if md := client.Tokens(ctx); md != nil {
		fmt.Printf("Scopes:  %s\n", strings.Join(md.Scopes, " "))
		fmt.Printf("Expires: %s\n", md.ExpiresAt.Format(time.RFC3339))
	}

	if in, err := client.IntrospectToken(ctx); err != nil {
		logger.Warn().Err(err).Msg("introspection not supported by server")
	} else {
		fmt.Printf("Active:  %t\n", in.Active)
	}

	fmt.Print("\nPress Enter to log out (Ctrl-C to keep the session)... ")
	done := make(chan struct{})
	go func() {
		fmt.Scanln()
		close(done)
	}()
	select {
	case <-done:
		if err := client.Logout(ctx); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
		fmt.Println("Logged out.")
	case <-ctx.Done():
		fmt.Println("\nSession kept.")
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
