package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// NewStaticHandler serves dir the way the deployed SPA is served: existing
// files first, then index for any other path so client routing takes over.
// Requests are logged to logw when it is not nil.
func NewStaticHandler(dir, index string, logw io.Writer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	if logw != nil {
		e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogStatus: true,
			LogURI:    true,
			LogMethod: true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				fmt.Fprintf(logw, "%s %s %d\n", v.Method, v.URI, v.Status)
				return nil
			},
		}))
	}
	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Root:  dir,
		Index: index,
		HTML5: true,
	}))
	// Directories without their own index fall through to the app shell too.
	fallback := filepath.Join(dir, index)
	e.GET("/*", func(c echo.Context) error {
		return c.File(fallback)
	})
	return e
}

// staticServer is a static handler bound to a loopback listener. done is
// closed once Serve returns; err holds its failure, if any.
type staticServer struct {
	server   *http.Server
	listener net.Listener
	done     chan struct{}
	err      error
}

func startStatic(dir, index, addr string, logw io.Writer) (*staticServer, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat serve directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("serve path is not a directory: %s", dir)
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	s := &staticServer{
		server: &http.Server{
			Handler:           NewStaticHandler(dir, index, logw),
			ReadHeaderTimeout: 10 * time.Second,
		},
		listener: listener,
		done:     make(chan struct{}),
	}
	go func() {
		err := s.server.Serve(listener)
		if err != nil && err != http.ErrServerClosed {
			s.err = err
		}
		close(s.done)
	}()
	return s, nil
}

func (s *staticServer) URL() string {
	return "http://" + s.listener.Addr().String()
}

// stopped reports why the server is no longer serving, or nil while it is.
func (s *staticServer) stopped() error {
	select {
	case <-s.done:
		if s.err != nil {
			return fmt.Errorf("serve failed: %w", s.err)
		}
		return errors.New("server stopped")
	default:
		return nil
	}
}

func (s *staticServer) shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	<-s.done
	if s.err != nil {
		return fmt.Errorf("serve failed: %w", s.err)
	}
	return nil
}

// Serve previews dir on 127.0.0.1:port until ctx is canceled. Port 0 picks a
// free port.
func Serve(ctx context.Context, dir string, port int, out io.Writer) error {
	s, err := startStatic(dir, "index.html", fmt.Sprintf("127.0.0.1:%d", port), out)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Serving %s at %s\n", dir, s.URL())

	select {
	case <-s.done:
		if s.err != nil {
			return fmt.Errorf("serve failed: %w", s.err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.shutdown(shutdownCtx)
	}
}
