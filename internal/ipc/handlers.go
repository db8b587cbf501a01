package ipc

import (
	"net/http"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/matjam/shmpaper"
	"github.com/spf13/viper"
)

// GET /status
func statusHandler(m ManagerInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSONPretty(http.StatusOK, StatusResponse{
			Status:        "ok",
			Message:       "shmpaper is running",
			Version:       strings.Trim(shmpaper.Version, "\n\r "),
			PID:           os.Getpid(),
			Socket:        SocketPath(),
			Config:        viper.ConfigFileUsed(),
			SessionStatus: m.Status(),
		}, "  ")
	}
}

// POST /stop
func stopHandler(m ManagerInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := m.EnqueueCommand(Command{Type: CommandStop}); err != nil {
			return c.JSON(http.StatusServiceUnavailable, Response{Status: "error", Message: err.Error()})
		}
		return c.JSON(http.StatusOK, Response{Status: "ok"})
	}
}
