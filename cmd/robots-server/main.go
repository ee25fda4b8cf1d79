package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"robots/internal/cliopts"
	"robots/internal/engine"
	"robots/internal/servernet"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("robots-server", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		serverName      string
		playersCount    uint
		sizeX, sizeY    uint
		gameLength      uint
		explosionRadius uint
		bombTimer       uint
		turnDuration    uint64
		initialBlocks   uint
		port            uint
		seed            uint64
	)
	cliopts.String(fs, &serverName, "server-name", "n", "robots", "server name advertised in Hello")
	cliopts.Uint(fs, &playersCount, "players-count", "c", 2, "players required before the game starts")
	cliopts.Uint(fs, &sizeX, "size-x", "x", 16, "board width")
	cliopts.Uint(fs, &sizeY, "size-y", "y", 16, "board height")
	cliopts.Uint(fs, &gameLength, "game-length", "l", 100, "turns per game")
	cliopts.Uint(fs, &explosionRadius, "explosion-radius", "e", 3, "bomb explosion radius")
	cliopts.Uint(fs, &bombTimer, "bomb-timer", "b", 5, "turns before a placed bomb explodes")
	cliopts.Uint64(fs, &turnDuration, "turn-duration", "t", 500, "milliseconds per turn")
	cliopts.Uint(fs, &initialBlocks, "initial-blocks", "k", 10, "blocks placed at game start")
	cliopts.Uint(fs, &port, "port", "p", 8080, "TCP listen port")
	cliopts.Uint64(fs, &seed, "seed", "s", 0, "PRNG seed")

	if err := cliopts.Parse(fs, args); err != nil {
		if err == cliopts.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if playersCount == 0 || playersCount > engine.MaxPlayerCount {
		fmt.Fprintf(os.Stderr, "players-count must be between 1 and %d\n", engine.MaxPlayerCount)
		return 1
	}

	cfg := engine.Config{
		ServerName:      serverName,
		PlayerCount:     uint8(playersCount),
		SizeX:           uint16(sizeX),
		SizeY:           uint16(sizeY),
		GameLength:      uint16(gameLength),
		ExplosionRadius: uint16(explosionRadius),
		BombTimer:       uint16(bombTimer),
		TurnDuration:    turnDuration,
		InitialBlocks:   uint16(initialBlocks),
		Seed:            uint32(seed),
	}

	logger := log.New(os.Stderr, "robots-server: ", log.LstdFlags)
	srv := servernet.New(cfg, logger)
	if err := srv.Listen(uint16(port)); err != nil {
		logger.Printf("listen on port %d: %v", port, err)
		return 1
	}

	interrupted := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		logger.Printf("interrupted, shutting down")
		close(interrupted)
		srv.Shutdown()
	}()

	err := srv.Run()
	select {
	case <-interrupted:
		return 1
	default:
	}
	if err != nil && err != servernet.ErrShutdown {
		logger.Printf("unexpected error: %v", err)
		return 2
	}
	return 0
}
