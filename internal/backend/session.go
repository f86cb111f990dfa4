// Package backend renders SPA routes in a headless browser against a local
// static server.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

const (
	DefaultIndex   = "index-original.html"
	DefaultTimeout = 1000 * time.Second
)

// Page is the rendered document of one path, or the reason it failed.
type Page struct {
	Path string
	HTML string
	Err  error
}

// Renderer turns paths into fully rendered HTML. A non-nil error from Render
// means the shared browser or server is gone and the whole batch is lost;
// per-path failures are reported in Page.Err.
type Renderer interface {
	Render(ctx context.Context, paths []string) ([]Page, error)
	Close() error
}

// SessionError reports a failure of the shared server or browser.
type SessionError struct {
	Op  string
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("render session %s: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

type Options struct {
	OutDir string
	// Index is served for paths without a file; the pristine template keeps
	// composed pages from leaking into live renders.
	Index       string
	ChromeBin   string
	Timeout     time.Duration
	Concurrency int
	Logger      *slog.Logger
}

// Session owns one static server and one browser for the lifetime of a
// command. It starts on the first Render and stops on Close.
type Session struct {
	opts   Options
	logger *slog.Logger

	mu       sync.Mutex
	server   *staticServer
	launcher *launcher.Launcher
	browser  *rod.Browser
	closed   bool
}

func NewSession(opts Options) *Session {
	if opts.Index == "" {
		opts.Index = DefaultIndex
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{opts: opts, logger: logger}
}

// Start boots the server and the browser unless they are already running.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &SessionError{Op: "start", Err: errors.New("session is closed")}
	}
	if s.browser != nil {
		return nil
	}

	started := time.Now()
	server, err := startStatic(s.opts.OutDir, s.opts.Index, "127.0.0.1:0", nil)
	if err != nil {
		return &SessionError{Op: "start server", Err: err}
	}

	l := launcher.New().Headless(true)
	if bin := s.chromeBin(); bin != "" {
		l = l.Bin(bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		_ = server.shutdown(context.Background())
		return &SessionError{Op: "launch browser", Err: err}
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		_ = server.shutdown(context.Background())
		return &SessionError{Op: "connect browser", Err: err}
	}

	s.server, s.launcher, s.browser = server, l, browser
	s.logger.Info("render session started", "url", server.URL(), "duration", time.Since(started).String())
	return nil
}

func (s *Session) chromeBin() string {
	if s.opts.ChromeBin != "" {
		return s.opts.ChromeBin
	}
	if path, ok := launcher.LookPath(); ok {
		return path
	}
	return ""
}

// Render opens every path in its own page, all at once unless Concurrency
// bounds it, and returns the pages in input order.
func (s *Session) Render(ctx context.Context, paths []string) ([]Page, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if err := s.Start(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	browser, server := s.browser, s.server
	s.mu.Unlock()
	if sessErr := s.checkAlive(browser, server); sessErr != nil {
		return nil, sessErr
	}

	var sem chan struct{}
	if s.opts.Concurrency > 0 {
		sem = make(chan struct{}, s.opts.Concurrency)
	}
	pages := make([]Page, len(paths))
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			pages[i] = s.renderOne(ctx, browser, server, path)
		}(i, path)
	}
	wg.Wait()

	if sessErr := s.checkAlive(browser, server); sessErr != nil {
		return pages, sessErr
	}

	for _, p := range pages {
		var sessErr *SessionError
		if errors.As(p.Err, &sessErr) {
			return pages, sessErr
		}
	}
	return pages, nil
}

// checkAlive returns a SessionError when the static server has stopped or
// the browser no longer answers.
func (s *Session) checkAlive(browser *rod.Browser, server *staticServer) *SessionError {
	if server != nil {
		if err := server.stopped(); err != nil {
			return &SessionError{Op: "serve", Err: err}
		}
	}
	if browser != nil {
		if _, err := (proto.BrowserGetVersion{}).Call(browser.Timeout(5 * time.Second)); err != nil {
			return &SessionError{Op: "browser", Err: err}
		}
	}
	return nil
}

// failed wraps a per-page error, promoting it to a SessionError when the
// server or browser behind it is gone.
func (s *Session) failed(browser *rod.Browser, server *staticServer, err error) error {
	if sessErr := s.checkAlive(browser, server); sessErr != nil {
		sessErr.Err = errors.Join(sessErr.Err, err)
		return sessErr
	}
	return err
}

func (s *Session) renderOne(ctx context.Context, browser *rod.Browser, server *staticServer, path string) Page {
	out := Page{Path: path}
	started := time.Now()

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		out.Err = &SessionError{Op: "open page", Err: err}
		return out
	}
	defer func() { _ = page.Close() }()

	timed := page.Timeout(s.opts.Timeout)
	wait := timed.WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)
	target := server.URL() + "/" + strings.TrimLeft(path, "/")
	if err := timed.Navigate(target); err != nil {
		out.Err = s.failed(browser, server, fmt.Errorf("navigate %s: %w", target, err))
		return out
	}
	wait()

	html, err := timed.HTML()
	if err != nil {
		out.Err = s.failed(browser, server, fmt.Errorf("read rendered html of %s: %w", path, err))
		return out
	}
	out.HTML = html
	s.logger.Debug("rendered page", "path", path, "duration", time.Since(started).String())
	return out
}

// Close stops the browser and the server. It is safe to call more than once
// and on a session that never started.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		s.launcher.Kill()
	}
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.browser, s.launcher, s.server = nil, nil, nil
	return errors.Join(errs...)
}
