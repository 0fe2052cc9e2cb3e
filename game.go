package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/portalchef/catalog"
	"github.com/milk9111/portalchef/common"
	"github.com/milk9111/portalchef/ecs"
	"github.com/milk9111/portalchef/ecs/system"
	"github.com/milk9111/portalchef/level"
	"github.com/milk9111/portalchef/prefabs"
	"go.uber.org/zap"
)

type GameOptions struct {
	Config  string
	Catalog string
	Level   string
	Debug   bool
	Logger  *zap.Logger
}

type Game struct {
	opts GameOptions
	log  *zap.Logger

	spec   *prefabs.GameSpec
	driver *system.Driver
	camera *common.Camera
	input  *Input

	watcher *prefabs.Watcher

	levelName string
	levelSpec prefabs.LevelSpec

	paused  bool
	pauseUI *ebitenui.UI
	quit    bool

	frames    int
	teleports int
	bounces   int
}

func NewGame(opts GameOptions) (*Game, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Config == "" {
		opts.Config = "game.yaml"
	}

	spec, err := prefabs.LoadGameSpec(opts.Config)
	if err != nil {
		return nil, err
	}
	cat, err := loadCatalog(spec, opts.Catalog, opts.Logger)
	if err != nil {
		return nil, err
	}
	driver, err := system.NewDriver(spec, cat, nil, system.WithLogger(opts.Logger))
	if err != nil {
		return nil, err
	}

	g := &Game{
		opts:   opts,
		log:    opts.Logger,
		spec:   spec,
		driver: driver,
		input:  NewInput(spec.Portal),
	}
	g.camera = newCamera(spec.Arena)
	driver.Profile(opts.Debug)

	name := opts.Level
	if name == "" {
		name = spec.Levels[0].Name
	}
	if err := g.StartLevel(name); err != nil {
		return nil, err
	}

	g.watch()
	g.pauseUI = NewPauseUI(g)
	return g, nil
}

// newCamera frames the arena between its floor and ceiling.
func newCamera(arena prefabs.ArenaSpec) *common.Camera {
	center := cp.Vector{X: 0, Y: (arena.Ceiling + arena.Floor) / 2}
	half := (arena.Ceiling-arena.Floor)/2 + common.ViewMargin
	return common.NewCamera(center, half, common.BaseWidth, common.BaseHeight)
}

func loadCatalog(spec *prefabs.GameSpec, path string, log *zap.Logger) (*catalog.Catalog, error) {
	if path != "" {
		return catalog.LoadFile(path, catalog.WithLogger(log))
	}
	return prefabs.LoadCatalog(spec.Catalog, catalog.WithLogger(log))
}

// StartLevel replaces the running level with a fresh copy of name.
func (g *Game) StartLevel(name string) error {
	ls, ok := g.spec.Level(name)
	if !ok {
		return fmt.Errorf("game: unknown level %q", name)
	}
	src, err := prefabs.LoadScript(ls.Script)
	if err != nil {
		return err
	}
	lvl, err := level.NewScript(ls.Name, src,
		level.WithLogger(g.log),
		level.WithSeed(time.Now().UnixNano()))
	if err != nil {
		return err
	}

	g.driver.SetLevel(lvl)
	g.levelName = name
	g.levelSpec = ls
	g.teleports, g.bounces = 0, 0
	return nil
}

// NextLevel starts the level after the current one, wrapping around.
func (g *Game) NextLevel() error {
	for i, l := range g.spec.Levels {
		if l.Name == g.levelName {
			return g.StartLevel(g.spec.Levels[(i+1)%len(g.spec.Levels)].Name)
		}
	}
	return g.StartLevel(g.spec.Levels[0].Name)
}

func (g *Game) Levels() []prefabs.LevelSpec {
	return g.spec.Levels
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}
	g.frames++

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	g.pollWatcher()

	switch g.driver.Status() {
	case level.Won:
		if inpututil.IsKeyJustPressed(ebiten.KeyN) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
			g.logError("game: next level", g.NextLevel())
		}
	case level.Lost:
		if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
			g.logError("game: restart level", g.StartLevel(g.levelName))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.logError("game: restart level", g.StartLevel(g.levelName))
	}

	elapsed := 1.0 / float64(ebiten.TPS())
	g.input.Update(g.driver, elapsed)
	for _, evt := range g.driver.Update(elapsed) {
		g.handleEvent(evt)
	}
	return nil
}

func (g *Game) handleEvent(evt ecs.Event) {
	switch data := evt.Data.(type) {
	case system.Teleported:
		g.teleports++
		g.log.Debug("game: teleport", zap.String("food", data.Food), zap.Int("entry", int(data.Entry)))
	case system.Bounced:
		g.bounces++
	case system.PotHit:
		g.log.Debug("game: pot hit", zap.String("food", data.Food), zap.Int("pot", data.Pot))
	case system.FellOff:
		g.log.Debug("game: fell off", zap.String("food", data.Food))
	}
}

func (g *Game) logError(msg string, err error) {
	if err != nil {
		g.log.Error(msg, zap.Error(err))
	}
}

// watch starts hot reloading when the prefabs directory exists on disk.
func (g *Game) watch() {
	if _, err := os.Stat(prefabs.Dir); err != nil {
		g.log.Debug("game: hot reload disabled", zap.String("dir", prefabs.Dir))
		return
	}
	w, err := prefabs.NewWatcher(prefabs.Dir, filepath.Join(prefabs.Dir, "scripts"))
	if err != nil {
		g.log.Warn("game: hot reload disabled", zap.Error(err))
		return
	}
	g.watcher = w
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.reload(path)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.log.Warn("game: watcher", zap.Error(err))
		default:
			return
		}
	}
}

// reload applies an edited prefab file. Failures keep the previous state.
func (g *Game) reload(path string) {
	base := filepath.Base(path)
	switch prefabs.Classify(path) {
	case prefabs.KindSpec:
		if base != filepath.Base(g.opts.Config) {
			return
		}
		spec, err := prefabs.LoadGameSpec(g.opts.Config)
		if err != nil {
			g.log.Warn("game: reload config", zap.Error(err))
			return
		}
		if err := g.driver.ApplySpec(spec); err != nil {
			g.log.Warn("game: apply config", zap.Error(err))
			return
		}
		g.spec = spec
		g.input.SetSpec(spec.Portal)
		g.camera = newCamera(spec.Arena)
		g.pauseUI = NewPauseUI(g)
		g.log.Info("game: config reloaded", zap.String("file", base))

	case prefabs.KindCatalog:
		if g.opts.Catalog == "" && base != filepath.Base(g.spec.Catalog) {
			return
		}
		if g.opts.Catalog != "" && base != filepath.Base(g.opts.Catalog) {
			return
		}
		g.logError("game: reload catalog", g.reloadCatalog(path))

	case prefabs.KindScript:
		if base != filepath.Base(g.levelSpec.Script) {
			return
		}
		if err := g.StartLevel(g.levelName); err != nil {
			g.log.Warn("game: reload level", zap.Error(err))
			return
		}
		g.log.Info("game: level reloaded", zap.String("level", g.levelName))
	}
}

func (g *Game) reloadCatalog(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if cur := g.driver.Catalog(); cur != nil && cur.Checksum() == catalog.Sum(data) {
		g.log.Debug("game: catalog unchanged", zap.String("file", filepath.Base(path)))
		return nil
	}
	cat, err := catalog.Load(bytes.NewReader(data), catalog.WithLogger(g.log))
	if err != nil {
		return err
	}
	g.driver.SetCatalog(cat)
	g.log.Info("game: catalog reloaded",
		zap.String("file", filepath.Base(path)),
		zap.Int("boxes", cat.Len()),
		zap.Uint64("checksum", cat.Checksum()))
	return nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.drawWorld(screen)
	g.drawHUD(screen)
	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
