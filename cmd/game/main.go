package main

import (
	"flag"
	"io/fs"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/younwookim/gridsync/internal/application/game"
	"github.com/younwookim/gridsync/internal/application/scene/playing"
	"github.com/younwookim/gridsync/internal/application/system"
	"github.com/younwookim/gridsync/internal/infrastructure/config"
	"github.com/younwookim/gridsync/internal/infrastructure/logging"
	"github.com/younwookim/gridsync/internal/infrastructure/manifest"
	"github.com/younwookim/gridsync/internal/infrastructure/storage"
)

func main() {
	// Parse command line flags
	recordFlag := flag.String("record", "", "Record input to file (e.g., -record replay.json)")
	replayFlag := flag.String("replay", "", "Run a recorded replay headless and print the result")
	levelFlag := flag.String("log", "", "Override the log level (debug, info, warn, error)")
	flag.Parse()

	// Load configurations using embedded filesystem
	fsys, err := fs.Sub(configFS, "configs")
	if err != nil {
		log.Fatalf("Failed to get config subfs: %v", err)
	}
	loader := config.NewFSLoader(fsys, "configs")
	cfg, err := loader.LoadAll()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	engine := cfg.Engine
	if *levelFlag != "" {
		engine.Logging.Level = *levelFlag
	}
	logger, err := logging.New(engine.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logging.Sync(logger)

	lib, err := manifest.NewLibrary(cfg.Sprites, cfg.Tilesets)
	if err != nil {
		logger.Fatal("failed to build asset library", zap.Error(err))
	}

	if *replayFlag != "" {
		code := replayMain(*replayFlag, loader, cfg, lib, logger)
		logging.Sync(logger)
		os.Exit(code)
	}

	opts := playing.Options{
		Config:     cfg,
		Stages:     loader,
		Library:    lib,
		Input:      system.NewKeyboardInput(engine.Input),
		Logger:     logger,
		RecordPath: *recordFlag,
	}
	if *recordFlag != "" {
		// recordings always start from the spawn so they replay exactly
		opts.Stage = engine.Start.Stage
	}
	if engine.Storage.Enabled {
		saves, err := storage.Open(engine.Storage.AppName, logger)
		if err != nil {
			logger.Warn("save data unavailable, resume disabled", zap.Error(err))
		} else {
			opts.Saves = saves
		}
	}

	p, err := playing.New(opts)
	if err != nil {
		logger.Fatal("failed to start", zap.Error(err))
	}

	// Set up ebiten
	g := game.New(p, engine.Display.ScreenWidth, engine.Display.ScreenHeight)
	g.SetTPS(engine.Display.Framerate)
	ebiten.SetWindowSize(engine.Display.ScreenWidth*engine.Display.Scale,
		engine.Display.ScreenHeight*engine.Display.Scale)
	ebiten.SetWindowTitle(engine.Display.Title)

	// Run game
	runErr := ebiten.RunGame(g)
	g.Close()
	if runErr != nil {
		logger.Error("game loop stopped", zap.Error(runErr))
		logging.Sync(logger)
		os.Exit(1)
	}
}
