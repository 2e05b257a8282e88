package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bendemeyer/Naive-Chess-Engine/internal/config"
	"github.com/bendemeyer/Naive-Chess-Engine/internal/search"
	"github.com/chzyer/readline"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logging; stdout belongs to the prompt
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	zerolog.SetGlobalLevel(cfg.Level())

	maxDepth := flag.Int("depth", cfg.Search.MaxDepth, "maximum search depth in plies, 0 for unbounded")
	maxBreadth := flag.Int("breadth", cfg.Search.MaxBreadth, "maximum number of tree nodes, 0 for unbounded")
	workers := flag.Int("workers", cfg.Search.Workers, "leaves expanded concurrently")
	history := flag.String("history", "", "file to keep command history in")
	flag.Parse()

	p, err := newPrompt(os.Stdin, os.Stdout,
		promptOptions{interactive: readline.DefaultIsTerminal(), historyFile: *history},
		search.WithLogger(log.Logger),
		search.WithWorkers(*workers),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open prompt")
	}
	defer p.Close()

	if err := p.start(*maxDepth, *maxBreadth); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := p.run(); err != nil {
		log.Fatal().Err(err).Msg("Game aborted")
	}
}
