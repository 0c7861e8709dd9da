// Package oauth runs the loopback redirect target used when a Google
// account is connected from the terminal.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"
)

// CallbackPath is the path Google redirects to.
const CallbackPath = "/callback"

// ErrStateMismatch is returned when the callback state differs from the
// state the login was started with.
var ErrStateMismatch = errors.New("oauth callback state mismatch")

type callback struct {
	code  string
	state string
	err   error
}

// CallbackServer receives one OAuth redirect on 127.0.0.1.
type CallbackServer struct {
	mu       sync.Mutex
	port     int
	results  chan callback
	server   *http.Server
	listener net.Listener
}

// NewCallbackServer creates a callback server for port.
// If port is 0, a free port is chosen by Start.
func NewCallbackServer(port int) *CallbackServer {
	return &CallbackServer{
		port:    port,
		results: make(chan callback, 1),
	}
}

// Start begins listening. Port and RedirectURI are valid afterwards.
func (s *CallbackServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, s.handleCallback)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.deliver(callback{err: err})
		}
	}()

	return nil
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if reason := q.Get("error"); reason != "" {
		s.deliver(callback{err: fmt.Errorf("google declined the request: %s", reason)})
		_, _ = fmt.Fprint(w, resultPage("Connection failed", q.Get("error_description")))
		return
	}

	code := q.Get("code")
	if code == "" {
		s.deliver(callback{err: errors.New("no authorization code received")})
		_, _ = fmt.Fprint(w, resultPage("Connection failed", "No authorization code was received."))
		return
	}

	s.deliver(callback{code: code, state: q.Get("state")})
	_, _ = fmt.Fprint(w, resultPage("Google account connected", "You can close this window and return to the terminal."))
}

// deliver keeps the first result and drops the rest.
func (s *CallbackServer) deliver(cb callback) {
	select {
	case s.results <- cb:
	default:
	}
}

// WaitForCode blocks until the redirect arrives, ctx is done or timeout
// passes, and returns the authorization code if its state matches.
func (s *CallbackServer) WaitForCode(ctx context.Context, state string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case cb := <-s.results:
		if cb.err != nil {
			return "", cb.err
		}
		if state == "" || cb.state != state {
			return "", ErrStateMismatch
		}
		return cb.code, nil
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for authorization callback: %w", ctx.Err())
	}
}

// Stop shuts down the callback server.
func (s *CallbackServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Port returns the port the server is listening on.
func (s *CallbackServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

// RedirectURI returns the redirect URI to register for this server.
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://localhost:%d%s", s.Port(), CallbackPath)
}

func resultPage(title, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <title>clientdesk</title>
    <style>
        body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; display: flex;
               justify-content: center; align-items: center; height: 100vh; margin: 0; background: #FAFAFA; }
        .card { text-align: center; background: white; padding: 48px 64px; border-radius: 12px;
                border: 1px solid #D0D4DA; }
        h1 { color: #2B3440; margin: 0 0 8px 0; font-size: 22px; }
        p { color: #6B7380; margin: 0; }
    </style>
</head>
<body>
    <div class="card">
        <h1>%s</h1>
        <p>%s</p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(message))
}

// OpenBrowser opens the default browser at url.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
