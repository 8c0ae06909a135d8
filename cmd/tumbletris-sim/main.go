package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/plus3/tumbletris/internal/config"
	"github.com/plus3/tumbletris/internal/logging"
	"github.com/plus3/tumbletris/internal/metrics"
	"github.com/plus3/tumbletris/tetris"
)

const frameTime = 1.0 / 60.0

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (default $"+config.EnvPath+").")
	frames := flag.Int("frames", 60*60, "Number of frames to simulate; 0 runs until -duration expires.")
	duration := flag.Duration("duration", 0, "Stop after this much wall time, if set.")
	hold := flag.Int("hold", 30, "Frames the scripted player holds each input for.")
	scriptSeed := flag.Uint64("script-seed", 1, "Seed for the scripted player.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	if *frames <= 0 && *duration <= 0 {
		log.Fatal("one of -frames or -duration is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer closer.Close()
	defer logger.Sync()

	report, err := simulate(cfg, logger, *frames, *duration, newScript(*scriptSeed, *hold))
	if err != nil {
		logger.Fatal("simulation failed", zap.Error(err))
	}
	report.GCPauseMetrics = *gcPauseMetrics

	fmt.Println("\n\n--- Simulation Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		logger.Fatal("failed to generate report", zap.Error(err))
	}
	fmt.Println("--- End of Report ---")
}

// simulate runs the game headless with a scripted player until frames have
// run or duration has passed, whichever comes first.
func simulate(cfg config.Config, logger *zap.Logger, frames int, duration time.Duration, player *script) (*Report, error) {
	recorder := metrics.NewRecorder()
	game, err := tetris.NewGame(cfg,
		tetris.WithLogger(logger),
		tetris.WithObserver(recorder),
		tetris.WithKeyboard(player),
	)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	report := &Report{
		Frames:   frames,
		Duration: duration,
		Lanes:    cfg.Board.Lanes,
		Rows:     cfg.Board.Rows,
		Joints:   cfg.Piece.Joints,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	game.Logger().Info("simulation started", zap.Int("frames", frames), zap.Duration("duration", duration))
	start := time.Now()

Loop:
	for frames <= 0 || report.TotalFrames < int64(frames) {
		select {
		case <-ctx.Done():
			break Loop
		default:
		}

		player.Advance()
		frameStart := time.Now()
		game.Tick(frameTime)
		report.FrameTime.Samples = append(report.FrameTime.Samples, time.Since(frameStart))
		report.TotalFrames++
	}

	report.TotalTime = time.Since(start)
	report.FrameTime.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	report.Pieces = game.Session.Spawned
	report.Respawns = game.Respawns()
	report.Scheduler = *game.Scheduler.GetStats()
	report.PiecesByKind, err = piecesByKind(recorder)
	if err != nil {
		return nil, err
	}

	game.Logger().Info("simulation finished",
		zap.Int64("frames", report.TotalFrames),
		zap.Uint64("pieces", report.Pieces),
		zap.Uint64("respawns", report.Respawns))
	return report, nil
}
