package ipc

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/matjam/shmpaper/internal/middleware"
)

const socketName = "shmpaper.sock"

// SocketPath is the control socket in the user's runtime dir, or in the
// temp dir when the runtime dir does not exist.
func SocketPath() string {
	sockDir := xdg.RuntimeDir
	if fi, err := os.Stat(sockDir); err != nil || !fi.IsDir() {
		sockDir = os.TempDir()
	}
	return filepath.Join(sockDir, socketName)
}

// NewServer builds the echo instance serving the control API.
func NewServer(manager ManagerInterface) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.CharmLog())

	RegisterRoutes(e, manager)
	return e
}

// Start serves the control socket until ctx is done. A socket left behind by
// a crashed instance is replaced; a live one is an error.
func Start(ctx context.Context, manager ManagerInterface) error {
	sockPath := SocketPath()

	if _, err := os.Stat(sockPath); err == nil {
		if conn, err := net.Dial("unix", sockPath); err == nil {
			conn.Close()
			return fmt.Errorf("control socket %s is in use", sockPath)
		}
		_ = os.Remove(sockPath)
	}

	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", sockPath, err)
	}
	defer os.Remove(sockPath)

	e := NewServer(manager)
	e.Listener = listener

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Warnf("Socket server shutdown: %v", err)
		}
	}()

	log.Debugf("Control socket listening on %s", sockPath)
	server := new(http.Server)
	if err := e.StartServer(server); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("socket server: %w", err)
	}
	return nil
}
