// eyemouse-agent: applies pointer commands from a remote eyemouse to this desktop.
// Run it on the machine whose pointer should move, then start eyemouse with
// -sink remote -agent <host>:<port>.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/teslashibe/go-eyemouse/internal/config"
	"github.com/teslashibe/go-eyemouse/internal/log"
	"github.com/teslashibe/go-eyemouse/pkg/agent"
	"github.com/teslashibe/go-eyemouse/pkg/input"
)

var (
	port     = flag.String("port", config.String("AGENT_PORT", config.DefaultAgentPort), "HTTP server port (EYEMOUSE_AGENT_PORT)")
	dryRun   = flag.Bool("dry-run", false, "Log commands instead of moving the pointer")
	debug    = flag.Bool("debug", false, "Enable debug logging and request logs")
	logLevel = flag.String("log-level", config.String("LOG_LEVEL", "info"), "Log level: debug, info, warn, error")
)

func main() {
	flag.Parse()
	if *debug {
		*logLevel = "debug"
	}
	log.Init(*logLevel)

	kind := input.KindDesktop
	if *dryRun {
		kind = input.KindLog
	}
	sink, err := input.New(context.Background(), input.Options{Kind: kind, Width: 1920, Height: 1080})
	if err != nil {
		log.Error("input sink unavailable", "sink", kind, "error", err)
		os.Exit(1)
	}

	middleware := []fiber.Handler{cors.New()}
	if *debug {
		middleware = append(middleware, logger.New())
	}

	srv := agent.New(sink)
	app := srv.NewApp(middleware...)

	go func() {
		addr := ":" + *port
		log.Info("agent listening",
			"addr", addr,
			"websocket", "ws://localhost"+addr+"/ws/input",
			"health", "http://localhost"+addr+"/health")

		if err := app.Listen(addr); err != nil {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down", "clients", srv.ClientCount())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn("shutdown error", "error", err)
	}
	log.Info("goodbye", "stats", srv.GetStats())
}
