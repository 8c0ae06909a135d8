package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"net/http"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"github.com/plus3/tumbletris/ecs"
	"github.com/plus3/tumbletris/ecs/debugui"
	debugui_ebiten "github.com/plus3/tumbletris/ecs/debugui/ebiten"
	"github.com/plus3/tumbletris/internal/config"
	"github.com/plus3/tumbletris/internal/logging"
	"github.com/plus3/tumbletris/internal/metrics"
	"github.com/plus3/tumbletris/internal/render"
	"github.com/plus3/tumbletris/tetris"
)

const (
	frameTime     = 1.0 / 60.0
	statsHistory  = 240
	windowPadding = 4
)

type Game struct {
	game     *tetris.Game
	renderer *render.System
	block    *ebiten.Image
	imgui    *debugui_ebiten.ImguiBackend
}

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (default $"+config.EnvPath+").")
	debug := flag.Bool("debug", false, "Show the ImGui stats and inspector windows.")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090.")
	flag.Parse()

	if err := run(*configPath, *debug, *metricsAddr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, debug bool, metricsAddr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()
	defer logger.Sync()

	recorder := metrics.NewRecorder()
	if metricsAddr != "" {
		go serveMetrics(logger, metricsAddr, recorder.Handler())
	}

	// leave room around the board for the floor and pieces that tumble off
	width := (cfg.Board.Lanes + 2*windowPadding) * cfg.Render.BlockPixelSize
	height := (cfg.Board.Rows + 2*windowPadding) * cfg.Render.BlockPixelSize

	g := &Game{
		renderer: &render.System{ScreenWidth: width, ScreenHeight: height},
		block:    ebiten.NewImage(1, 1),
	}
	g.block.Fill(color.White)

	opts := []tetris.Option{
		tetris.WithLogger(logger),
		tetris.WithObserver(recorder),
		tetris.WithSystems(g.renderer),
	}

	var kb keyboard
	if debug {
		g.imgui = debugui_ebiten.NewImguiBackend(cfg.Render.Title, width, height)
		opts = append(opts,
			tetris.WithComponents(debugui.RegisterComponents),
			tetris.WithSystems(&debugui.ImguiSystem{}, &debugui.WindowSystem{}),
		)
	} else {
		ebiten.SetWindowSize(width, height)
		ebiten.SetWindowTitle(cfg.Render.Title)
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	opts = append(opts, tetris.WithKeyboard(&kb))
	game, err := tetris.NewGame(cfg, opts...)
	if err != nil {
		return err
	}
	g.game = game
	g.renderer.Session = game.Session

	if debug {
		kb.imgui = ecs.NewSingleton[debugui.ImguiInputState](game.Storage)
		session := game.Session
		debugui.SpawnWindows(game.Storage,
			debugui.NewStatsWindow(game.Scheduler, statsHistory),
			debugui.Inspector{
				Title:   "Falling piece",
				Targets: func() []ecs.EntityId { return session.Piece.Blocks.IDs() },
			},
		)
	}

	err = ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		err = nil
	}
	game.Logger().Info("game stopped",
		zap.Uint64("pieces", game.Session.Spawned),
		zap.Uint64("respawns", game.Respawns()))
	return err
}

func serveMetrics(logger *zap.Logger, addr string, handler http.Handler) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	logger.Info("serving metrics", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", zap.Error(err))
	}
}

func (g *Game) Update() error {
	if quitRequested() {
		return ebiten.Termination
	}

	if g.imgui != nil {
		g.imgui.Frame(func() { g.game.Tick(frameTime) })
	} else {
		g.game.Tick(frameTime)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	for _, sprite := range g.renderer.Sprites {
		if sprite.Angle == 0 {
			vector.DrawFilledRect(screen,
				float32(sprite.X-sprite.Width/2), float32(sprite.Y-sprite.Height/2),
				float32(sprite.Width), float32(sprite.Height),
				sprite.Color, false)
			continue
		}

		opts := &ebiten.DrawImageOptions{}
		opts.GeoM.Scale(sprite.Width, sprite.Height)
		opts.GeoM.Translate(-sprite.Width/2, -sprite.Height/2)
		opts.GeoM.Rotate(sprite.Angle)
		opts.GeoM.Translate(sprite.X, sprite.Y)
		opts.ColorScale.ScaleWithColor(sprite.Color)
		screen.DrawImage(g.block, opts)
	}

	session := g.game.Session
	ebitenutil.DebugPrint(screen, fmt.Sprintf("TPS %.0f  piece #%d %s  respawns %d",
		ebiten.ActualTPS(), session.Piece.Sequence, session.Piece.Kind, g.game.Respawns()))

	if g.imgui != nil {
		g.imgui.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.imgui != nil {
		g.imgui.Layout(outsideWidth, outsideHeight)
	}
	g.renderer.ScreenWidth = outsideWidth
	g.renderer.ScreenHeight = outsideHeight
	return outsideWidth, outsideHeight
}
