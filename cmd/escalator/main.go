package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"escalator/internal/autoplay"
	"escalator/internal/config"
	"escalator/internal/game"
	"escalator/internal/game/escalator"
	"escalator/internal/mcptools"
	"escalator/internal/session"
	"escalator/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	cmd := &cli.Command{
		Name:  "escalator",
		Usage: "play Escalator solitaire in the terminal, by policy or over MCP",
		Commands: []*cli.Command{
			playCommand(cfg),
			autoCommand(cfg),
			mcpCommand(cfg),
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func playCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "deal a game and play it interactively",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "seed", Usage: "shuffle seed (0 for a random deal)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			seed := int64(cmd.Int("seed"))
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			b := escalator.NewBoard()
			b.Deal(rand.New(rand.NewSource(seed)))
			fmt.Printf("seed %d\n", seed)
			return playLoop(os.Stdin, os.Stdout, b, cfg.Scoring)
		},
	}
}

func autoCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "auto",
		Usage: "let a policy play a batch of deals and report the win rate",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "games", Value: 100, Usage: "number of deals"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "seed of the first deal; later deals count up"},
			&cli.StringFlag{Name: "policy", Value: autoplay.PolicyGreedy, Usage: "first, greedy or lua"},
			&cli.StringFlag{Name: "script", Value: cfg.PolicyScript, Usage: "Lua policy script, implies --policy lua"},
			&cli.BoolFlag{Name: "verbose", Usage: "print every deal"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name, script := cmd.String("policy"), cmd.String("script")
			if script != "" && !cmd.IsSet("policy") {
				name = autoplay.PolicyLua
			}
			policy, err := autoplay.NewPolicy(name, script)
			if err != nil {
				return err
			}
			if lp, ok := policy.(*autoplay.LuaPolicy); ok {
				defer lp.Close()
			}

			report, err := autoplay.Run(ctx, policy, int(cmd.Int("games")), int64(cmd.Int("seed")), cfg.Scoring)
			if err != nil {
				return err
			}
			if cmd.Bool("verbose") {
				for _, d := range report.Deals {
					fmt.Printf("seed %-8d %-5s score %4d  captures %2d  turns %2d\n",
						d.Seed, d.Status, d.Score, d.Captures, d.Turns)
				}
			}
			fmt.Printf("%s: %d games, %d won (%.1f%%), best %d, mean %.2f\n",
				name, report.Games, report.Wins, 100*report.WinRate(), report.BestScore, report.MeanScore)
			return nil
		},
	}
}

func mcpCommand(cfg config.Config) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "serve the game as MCP tools over stdio",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db", Value: cfg.DBPath, Usage: "SQLite database path"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			store, err := storage.New(cmd.String("db"))
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer store.Close()

			registry := game.NewRegistry()
			registry.Register(escalator.Game{})
			mgr := session.NewManager(registry, store, cfg.Scoring)
			if err := mgr.Restore(); err != nil {
				log.Printf("warning: restore sessions: %v", err)
			}
			return mcptools.New(mgr).ServeStdio()
		},
	}
}
