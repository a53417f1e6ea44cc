package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"escalator/internal/game"
)

// playLoop shows the board, reads destinations from in and plays them
// until the deal ends or in runs dry.
func playLoop(in io.Reader, out io.Writer, s game.Solitaire, scoring game.Scoring) error {
	scanner := bufio.NewScanner(in)
	for s.Status() == game.InProgress {
		fmt.Fprintln(out, s.Display())
		fmt.Fprintf(out, "moves: %s\n> ", destinations(s.AvailableMoves()))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "q" || line == "quit" {
			return nil
		}
		dest, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintf(out, "not a destination: %q\n", line)
			continue
		}
		if _, err := s.Move(dest); err != nil {
			fmt.Fprintln(out, err)
		}
	}

	fmt.Fprintln(out, s.Display())
	final := scoring.Adjust(s.Score(), s.Status())
	if s.Status() == game.Won {
		fmt.Fprintf(out, "You won! Final score %d\n", final)
	} else {
		fmt.Fprintf(out, "No moves left, you lost. Final score %d\n", final)
	}
	return nil
}

func destinations(moves []game.Move) string {
	parts := make([]string, len(moves))
	for i, mv := range moves {
		parts[i] = strconv.Itoa(mv.Destination)
	}
	return strings.Join(parts, " ")
}
