package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bendemeyer/Naive-Chess-Engine/internal/config"
	"github.com/bendemeyer/Naive-Chess-Engine/internal/web"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Parse command line flags
	var showHelp bool
	flag.BoolVar(&showHelp, "help", false, "Show help information")
	flag.BoolVar(&showHelp, "h", false, "Show help information")
	flag.Parse()

	if showHelp {
		showHelpMessage()
		return
	}

	// Setup logging
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	zerolog.SetGlobalLevel(cfg.Level())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := web.NewHub()
	go hub.Run(ctx)

	service := web.NewService(cfg, hub)

	// Create server
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      service.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Int("maxDepth", cfg.Search.MaxDepth).
			Int("maxBreadth", cfg.Search.MaxBreadth).
			Int("workers", cfg.Search.Workers).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func showHelpMessage() {
	fmt.Println(`Naive Chess Engine Analysis Server

DESCRIPTION:
    HTTP service that keeps in-memory analysis sessions. Each session holds
    a bounded game tree from a position, suggests moves for the side to move
    and follows the game as moves are played.

USAGE:
    chess-server [OPTIONS]

OPTIONS:
    -h, --help    Show this help message

CONFIGURATION:
    Read from config.yaml in the current directory or ./config, overridden
    by NAIVECHESS_* environment variables (e.g. NAIVECHESS_SEARCH_MAX_DEPTH).

    Example config.yaml:
        server:
          host: localhost
          port: 8080

        search:
          max_depth: 3      # 0 = unbounded
          max_breadth: 0    # node cap, 0 = unbounded
          workers: 4

        development:
          debug: false
          log_level: info

API ENDPOINTS:
    GET    /api/health                      - Service health check
    POST   /api/games                       - Start a session {"fen", "maxDepth", "maxBreadth"}
    GET    /api/games/{id}                  - Session status, history and legal moves
    DELETE /api/games/{id}                  - Drop a session
    GET    /api/games/{id}/suggestions?n=3  - Best n moves for the side to move
    GET    /api/games/{id}/moves            - Every move, best first
    POST   /api/games/{id}/moves            - Play a move {"from": "e2", "to": "e4"}
    GET    /api/games/{id}/tree             - Search tree size per level
    GET    /api/ws?gameId={id}              - WebSocket stream of played moves

EXAMPLES:
    curl -X POST http://localhost:8080/api/games -d '{"maxDepth": 2}'`)
}
