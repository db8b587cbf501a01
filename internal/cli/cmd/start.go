package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/matjam/shmpaper/internal/ipc"
	"github.com/matjam/shmpaper/internal/session"
)

// StartSession runs shmpaper in the foreground until it is stopped.
func StartSession() {
	log.Infof("StartSession() started in PID: %d", os.Getpid())

	if os.Getenv("BACKGROUND_PROCESS") == "1" {
		setupRotatingLogger()
	}

	if _, err := ipc.SendStatus(); err == nil {
		log.Infof("shmpaper is already running, exiting")
		os.Exit(0)
	}

	opts, err := session.OptionsFromConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := session.New(opts)

	go func() {
		log.Infof("Starting socket server")
		if err := ipc.Start(ctx, s); err != nil {
			log.Errorf("Control socket: %v", err)
		}
	}()

	if err := s.Run(ctx); err != nil {
		log.Errorf("shmpaper failed: %v", err)
		stop()
		os.Exit(1)
	}
	log.Infof("shmpaper exited")
}

func setupRotatingLogger() {
	logDir := filepath.Join(xdg.StateHome, "shmpaper")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		log.Fatalf("failed to create log directory: %v", err)
	}
	logPath := filepath.Join(logDir, "shmpaper.log")

	writer, err := rotatelogs.New(
		logPath+".%Y%m%d%H%M",
		rotatelogs.WithLinkName(logPath),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationSize(10*1024*1024),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		log.Fatalf("failed to configure log rotation: %v", err)
	}

	log.SetOutput(writer)
}
