package browser

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// LoopbackOpener implements Opener for hosts that can bind localhost: it
// serves the redirect URI on a local listener, launches the system browser,
// and resolves with the captured callback URL. Cancelling ctx resolves with
// OutcomeCancel.
type LoopbackOpener struct {
	// RedirectURI must be a http://127.0.0.1:<port>/<path> (or localhost)
	// URI registered with the authorization server.
	RedirectURI string

	// LaunchBrowser overrides how the URL is opened. Defaults to the
	// platform open command (xdg-open / open / rundll32).
	LaunchBrowser func(url string) error

	// ResponseHTML is served to the browser after capture. A plain
	// "you can close this window" page by default.
	ResponseHTML string

	Log zerolog.Logger
}

const defaultResponseHTML = `<html><body><p>Login complete. You can close this window.</p></body></html>`

func (l *LoopbackOpener) Open(ctx context.Context, authURL string) (*Result, error) {
	redirect, err := url.Parse(l.RedirectURI)
	if err != nil {
		return nil, errors.Wrap(err, "[LoopbackOpener.Open] parse redirect URI")
	}

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, errors.Wrap(err, "[LoopbackOpener.Open] listen")
	}

	captured := make(chan string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, func(w http.ResponseWriter, r *http.Request) {
		html := l.ResponseHTML
		if html == "" {
			html = defaultResponseHTML
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, html)
		select {
		case captured <- l.RedirectURI + "?" + r.URL.RawQuery:
		default:
		}
	})

	server := &http.Server{Handler: mux}
	go func() { _ = server.Serve(listener) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	launch := l.LaunchBrowser
	if launch == nil {
		launch = openSystemBrowser
	}
	if err := launch(authURL); err != nil {
		return nil, errors.Wrap(err, "[LoopbackOpener.Open] launch browser")
	}
	l.Log.Debug().Str("url", authURL).Msg("browser launched, waiting for callback")

	select {
	case callbackURL := <-captured:
		return &Result{Outcome: OutcomeSuccess, CallbackURL: callbackURL}, nil
	case <-ctx.Done():
		return &Result{Outcome: OutcomeCancel}, nil
	}
}

func openSystemBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
