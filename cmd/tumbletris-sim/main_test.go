package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/plus3/tumbletris/internal/config"
	"github.com/plus3/tumbletris/tetris"
)

func TestStatsFinalize(t *testing.T) {
	s := Stats{Samples: []time.Duration{3, 1, 2}}
	s.Finalize()
	assert.Equal(t, time.Duration(1), s.Min)
	assert.Equal(t, time.Duration(3), s.Max)
	assert.Equal(t, time.Duration(2), s.Avg)

	var empty Stats
	empty.Finalize()
	assert.Zero(t, empty.Avg)
}

func TestScriptHoldsInputs(t *testing.T) {
	s := newScript(9, 5)

	var snapshots []tetris.InputSnapshot
	for range 10 {
		s.Advance()
		snapshots = append(snapshots, tetris.Sample(s))
	}
	for i := 1; i < 5; i++ {
		assert.Equal(t, snapshots[0], snapshots[i], "inputs change only every hold period")
	}
	assert.False(t, s.Held(tetris.Action(99)))

	again := newScript(9, 5)
	again.Advance()
	assert.Equal(t, snapshots[0], tetris.Sample(again), "same seed, same script")
}

func TestSimulate(t *testing.T) {
	cfg := config.Default()
	cfg.Piece.Seed = 5

	report, err := simulate(cfg, zaptest.NewLogger(t), 120, 0, newScript(1, 30))
	require.NoError(t, err)

	assert.Equal(t, int64(120), report.TotalFrames)
	assert.Len(t, report.FrameTime.Samples, 120)
	assert.GreaterOrEqual(t, report.Pieces, uint64(1))
	assert.Equal(t, uint64(120), report.Scheduler.Frames)

	require.Len(t, report.PiecesByKind, tetris.KindCount)
	total := 0
	for _, row := range report.PiecesByKind {
		total += row.Count
	}
	assert.Equal(t, int(report.Pieces), total, "every spawn is counted by kind")

	var out bytes.Buffer
	require.NoError(t, report.Generate(&out))
	assert.Contains(t, out.String(), "# Tumbletris Simulation Report")
	assert.Contains(t, out.String(), "| RestSystem | 120 |")
	assert.Contains(t, out.String(), "**Total Frames:** 120")
}
