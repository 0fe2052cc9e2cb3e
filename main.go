package main

import (
	"flag"

	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/portalchef/assets"
	"go.uber.org/zap"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug mode")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	levelName := flag.String("level", "", "level name from the game config (defaults to the first level)")
	configName := flag.String("config", "game.yaml", "game config in prefabs/")
	catalogPath := flag.String("catalog", "", "bbx box catalog to use instead of the one named by the config")
	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(1280, 720)
	ebiten.SetWindowTitle("portalchef")
	ebiten.SetWindowIcon(assets.WindowIcons)

	game, err := NewGame(GameOptions{
		Config:  *configName,
		Catalog: *catalogPath,
		Level:   *levelName,
		Debug:   *debug,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal("game: init failed", zap.Error(err))
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil && err != ebiten.Termination {
		logger.Fatal("game: run failed", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("session", uuid.NewString())), nil
}
