package main

import (
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/plus3/tumbletris/ecs"
	"github.com/plus3/tumbletris/internal/metrics"
	"github.com/plus3/tumbletris/tetris"
)

type Report struct {
	// Configuration
	Frames   int
	Duration time.Duration
	Lanes    int
	Rows     int
	Joints   bool

	// Results
	TotalFrames    int64
	TotalTime      time.Duration
	FrameTime      Stats
	Pieces         uint64
	Respawns       uint64
	PiecesByKind   []KindCount
	Scheduler      ecs.SchedulerStats
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

type KindCount struct {
	Kind  string
	Count int
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

// piecesByKind reads the spawn counter back out of the recorder, one row per
// kind in catalog order.
func piecesByKind(recorder *metrics.Recorder) ([]KindCount, error) {
	families, err := recorder.Registry().Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	counts := map[string]int{}
	for _, family := range families {
		if family.GetName() != metrics.PiecesSpawnedName {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "kind" {
					counts[label.GetValue()] = int(m.GetCounter().GetValue())
				}
			}
		}
	}

	rows := make([]KindCount, 0, tetris.KindCount)
	for _, kind := range tetris.Kinds() {
		rows = append(rows, KindCount{Kind: kind.String(), Count: counts[kind.String()]})
	}
	return rows, nil
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Tumbletris Simulation Report

## Configuration
- **Frame Limit:** {{.Frames}}
- **Time Limit:** {{.Duration}}
- **Board:** {{.Lanes}}x{{.Rows}}
- **Joints:** {{.Joints}}

## Gameplay
- **Pieces Spawned:** {{.Pieces}}
- **Respawns:** {{.Respawns}}
{{range .PiecesByKind}}  - {{.Kind}}: {{.Count}}
{{end}}
## Performance Results
- **Total Frames:** {{.TotalFrames}}
- **Total Time:** {{.TotalTime}}
- **Frame Time:**
  - **Avg:** {{.FrameTime.Avg}}
  - **Min:** {{.FrameTime.Min}}
  - **Max:** {{.FrameTime.Max}}

| System | Runs | Avg | Max |
|--------|------|-----|-----|
{{range .Scheduler.Systems}}| {{.Name}} | {{.ExecutionCount}} | {{.AvgDuration}} | {{.MaxDuration}} |
{{end}}
## Memory Usage
- Heap Alloc:     {{mb .MemStatsStart.HeapAlloc}} MiB (start) -> {{mb .MemStatsEnd.HeapAlloc}} MiB (end)
- Total Alloc:    {{mb .MemStatsStart.TotalAlloc}} MiB (start) -> {{mb .MemStatsEnd.TotalAlloc}} MiB (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}} bytes
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}`

	fm := template.FuncMap{
		"mb": func(v uint64) string {
			return fmt.Sprintf("%.2f", float64(v)/1024/1024)
		},
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
