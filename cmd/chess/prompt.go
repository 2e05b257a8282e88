package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/bendemeyer/Naive-Chess-Engine/internal/board"
	"github.com/bendemeyer/Naive-Chess-Engine/internal/game"
	"github.com/bendemeyer/Naive-Chess-Engine/internal/search"
	"github.com/chzyer/readline"
)

var confirmations = map[string]bool{"y": true, "yes": true}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("new"),
	readline.PcItem("suggest"),
	readline.PcItem("status"),
	readline.PcItem("move"),
	readline.PcItem("moves",
		readline.PcItem("count"),
		readline.PcItem("list"),
	),
	readline.PcItem("tree"),
	readline.PcItem("help"),
	readline.PcItem("exit"),
)

// prompt is the interactive command loop around one game.
type prompt struct {
	rl          *readline.Instance
	out         io.Writer
	interactive bool
	game        *game.Game
	opts        []search.Option
}

type promptOptions struct {
	// interactive enables line editing; readline then draws the questions itself
	interactive bool
	historyFile string
}

func newPrompt(in io.Reader, out io.Writer, po promptOptions, opts ...search.Option) (*prompt, error) {
	cfg := &readline.Config{
		Prompt:                 "chess > ",
		HistoryFile:            po.historyFile,
		DisableAutoSaveHistory: true,
		AutoComplete:           completer,
		Stdin:                  io.NopCloser(in),
		Stdout:                 out,
		FuncIsTerminal:         func() bool { return po.interactive },
	}
	if !po.interactive {
		cfg.FuncMakeRaw = func() error { return nil }
		cfg.FuncExitRaw = func() error { return nil }
	}
	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open prompt: %w", err)
	}
	return &prompt{
		rl:          rl,
		out:         out,
		interactive: po.interactive,
		opts:        opts,
	}, nil
}

func (p *prompt) Close() error {
	return p.rl.Close()
}

// ask shows question and returns the next input line. ok is false once
// input is exhausted. An interrupted line reads as blank.
func (p *prompt) ask(question string) (string, bool) {
	if !p.interactive {
		fmt.Fprint(p.out, question)
	}
	p.rl.SetPrompt(question)
	line, err := p.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", true
	}
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func (p *prompt) confirm(question string) bool {
	answer, ok := p.ask(question)
	return ok && confirmations[strings.ToLower(answer)]
}

// askLimit reads a search limit. A blank answer or "inf" means unbounded.
func (p *prompt) askLimit(question string) (int, bool) {
	for {
		answer, ok := p.ask(question)
		if !ok {
			return 0, false
		}
		if answer == "" || strings.EqualFold(answer, "inf") {
			return 0, true
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 0 {
			return n, true
		}
		fmt.Fprintln(p.out, "Please enter a non-negative whole number.")
	}
}

func (p *prompt) askSquare(question string) (board.Square, bool) {
	answer, ok := p.ask(question)
	for ok {
		sq, err := board.ParseSquare(answer)
		if err == nil {
			return sq, true
		}
		answer, ok = p.ask("Invalid square name! Please try again: ")
	}
	return board.NoSquare, false
}

// start creates a game with the given limits, asking for limits again
// while both are unbounded.
func (p *prompt) start(maxDepth, maxBreadth int) error {
	for {
		g, err := game.New(maxDepth, maxBreadth, p.opts...)
		if err == nil {
			p.game = g
			fmt.Fprintln(p.out, "New game started!")
			fmt.Fprintln(p.out)
			return nil
		}
		if !errors.Is(err, search.ErrUnboundedSearch) {
			return err
		}
		fmt.Fprintln(p.out, "At least one of max depth or max breadth must be provided.")

		var ok bool
		if maxDepth, ok = p.askLimit("Max depth: "); !ok {
			return io.EOF
		}
		if maxBreadth, ok = p.askLimit("Max breadth: "); !ok {
			return io.EOF
		}
	}
}

// run reads commands until exit or end of input.
func (p *prompt) run() error {
	for {
		line, ok := p.ask("chess > ")
		if !ok {
			fmt.Fprintln(p.out)
			return nil
		}
		if line == "" {
			continue
		}
		_ = p.rl.SaveHistory(line)
		command, args, _ := strings.Cut(line, " ")
		args = strings.TrimSpace(args)

		var err error
		switch command {
		case "new":
			err = p.doNew()
		case "suggest":
			err = p.doSuggest(args)
		case "status":
			p.doStatus()
		case "move":
			err = p.doMove(args)
		case "moves":
			err = p.doMoves(args)
		case "tree":
			p.doTree()
		case "help", "?":
			p.doHelp()
		case "exit", "quit":
			if p.doExit() {
				return nil
			}
		default:
			fmt.Fprintf(p.out, "*** Unknown syntax: %s\n", line)
		}
		if err != nil {
			return err
		}
	}
}

func (p *prompt) doNew() error {
	if !p.confirm("Are you sure you want to start a new game? Your current game will be lost! (y/N): ") {
		fmt.Fprintln(p.out, "OK, not starting a new game!")
		fmt.Fprintln(p.out)
		return nil
	}
	fmt.Fprintln(p.out, "Starting a new game...")
	maxDepth, ok := p.askLimit("Max depth: ")
	if !ok {
		return nil
	}
	maxBreadth, ok := p.askLimit("Max breadth: ")
	if !ok {
		return nil
	}
	return p.start(maxDepth, maxBreadth)
}

func (p *prompt) doSuggest(args string) error {
	count := 1
	if n, err := strconv.Atoi(args); err == nil {
		count = n
	}
	for _, s := range p.game.SuggestMoves(count) {
		line, err := p.game.DescribeSuggestion(s)
		if err != nil {
			return err
		}
		fmt.Fprintln(p.out, line)
	}
	fmt.Fprintln(p.out)
	return nil
}

func (p *prompt) doStatus() {
	status := p.game.Status()
	fmt.Fprintf(p.out, "%s to move\n", status.Turn)
	if status.WhiteInCheck {
		fmt.Fprintln(p.out, "white in check")
	}
	if status.BlackInCheck {
		fmt.Fprintln(p.out, "black in check")
	}
	switch status.Outcome {
	case game.OutcomeWhiteWon, game.OutcomeBlackWon:
		fmt.Fprintln(p.out, "Checkmate")
	case game.OutcomeDraw:
		fmt.Fprintln(p.out, "Stalemate")
	}

	if status.Material == 0 {
		fmt.Fprintln(p.out, "No material advantage for either side")
	} else {
		fmt.Fprintf(p.out, "Material advantage of %d favoring %s\n", abs(status.Material), favoring(float64(status.Material)))
	}
	if status.Score == 0 {
		fmt.Fprintln(p.out, "No engine scored advantage for either side")
	} else {
		fmt.Fprintf(p.out, "Engine scored advantage of %.2f favoring %s\n", math.Abs(status.Score), favoring(status.Score))
	}
	fmt.Fprintln(p.out)
}

func (p *prompt) doMove(args string) error {
	var move board.Move
	switch fields := strings.Fields(args); {
	case len(fields) == 1:
		m, err := board.ParseMove(fields[0])
		if err != nil {
			fmt.Fprintln(p.out, "Invalid move! Use the form e2e4.")
			fmt.Fprintln(p.out)
			return nil
		}
		move = m
	case len(fields) == 2:
		m, err := board.ParseMove(fields[0] + fields[1])
		if err != nil {
			fmt.Fprintln(p.out, "Invalid move! Use the form e2 e4.")
			fmt.Fprintln(p.out)
			return nil
		}
		move = m
	default:
		from, ok := p.askSquare("Which piece would you like to move? Please provide the square name (e.g. \"b2\"): ")
		if !ok {
			return nil
		}
		to, ok := p.askSquare("Which square should it move to?: ")
		if !ok {
			return nil
		}
		move = board.NewMove(from, to)
	}

	if _, err := p.game.MakeMove(move); err != nil {
		if !errors.Is(err, game.ErrIllegalMove) {
			return err
		}
		history := p.game.History()
		played := make([]string, len(history))
		for i, m := range history {
			played[i] = m.String()
		}
		fmt.Fprintf(p.out, "Moves so far: [%s]\n", strings.Join(played, " "))
		fmt.Fprintln(p.out, "The provided move was not valid")
		fmt.Fprintln(p.out)
		return nil
	}
	fmt.Fprintln(p.out, "Move made!")
	fmt.Fprintln(p.out)
	return nil
}

func (p *prompt) doMoves(args string) error {
	doCount, doList, doPrompt := false, false, false
	switch args {
	case "-c", "--count", "count":
		doCount = true
	case "-l", "--list", "list":
		doList = true
	default:
		doPrompt = true
	}

	if doPrompt {
		doCount = p.confirm("Do you want to get a count of possible moves? (y/N): ")
	}
	moves := p.game.LegalMoves()
	if doCount {
		fmt.Fprintf(p.out, "There are %d moves available\n", len(moves))
	}
	if doPrompt {
		doList = p.confirm("Do you want to get a list of all possible moves? (y/N): ")
	}
	if doList {
		for _, m := range moves {
			description, err := p.game.DescribeMove(m)
			if err != nil {
				return err
			}
			fmt.Fprintln(p.out, description)
		}
	}
	fmt.Fprintln(p.out)
	return nil
}

func (p *prompt) doTree() {
	fmt.Fprintf(p.out, "There are %d total nodes in the tree\n", p.game.TreeSize())
	if p.confirm("Do you want a level-by-level breakdown? (y/N): ") {
		for i, count := range p.game.LevelCounts() {
			fmt.Fprintf(p.out, "Evaluation of level %d contains %d nodes\n", i+1, count)
		}
	}
	fmt.Fprintln(p.out)
}

func (p *prompt) doHelp() {
	fmt.Fprintln(p.out, `Commands:
  new              start a new game
  suggest [n]      show the best n moves (default 1)
  status           side to move, checks, material and engine score
  move [e2e4]      play a move; asks for squares when none is given
  moves [count|list]
                   count or list the available moves
  tree             size of the search tree
  exit             leave the prompt`)
	fmt.Fprintln(p.out)
}

func (p *prompt) doExit() bool {
	if !p.confirm("Are you sure you want to exit? Your current game will be lost! (y/N): ") {
		fmt.Fprintln(p.out, "OK, not exiting!")
		fmt.Fprintln(p.out)
		return false
	}
	fmt.Fprintln(p.out, "Exiting...")
	fmt.Fprintln(p.out)
	return true
}

func favoring(v float64) string {
	if v > 0 {
		return board.White.String()
	}
	return board.Black.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
