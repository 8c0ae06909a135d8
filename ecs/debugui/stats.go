package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tumbletris/ecs"
)

// frameHistory is a ring buffer of frame times in milliseconds.
type frameHistory struct {
	samples []float32
	next    int
	filled  bool
}

func newFrameHistory(size int) frameHistory {
	if size <= 0 {
		size = 1
	}
	return frameHistory{samples: make([]float32, size)}
}

func (h *frameHistory) Push(ms float32) {
	h.samples[h.next] = ms
	h.next = (h.next + 1) % len(h.samples)
	if h.next == 0 {
		h.filled = true
	}
}

// Average is the mean over the samples recorded so far.
func (h *frameHistory) Average() float32 {
	n := h.next
	if h.filled {
		n = len(h.samples)
	}
	if n == 0 {
		return 0
	}

	var sum float32
	for _, s := range h.samples[:n] {
		sum += s
	}
	return sum / float32(n)
}

// StatsWindow shows storage contents, per-system timings and a frame graph.
type StatsWindow struct {
	Scheduler *ecs.Scheduler
	history   frameHistory
}

// NewStatsWindow keeps historyFrames frame times for the graph.
func NewStatsWindow(scheduler *ecs.Scheduler, historyFrames int) StatsWindow {
	return StatsWindow{
		Scheduler: scheduler,
		history:   newFrameHistory(historyFrames),
	}
}

func (w *StatsWindow) Render(storage *ecs.Storage) {
	if !imgui.BeginV("Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	stats := storage.CollectStats()
	imgui.Text(fmt.Sprintf("Entities: %d", stats.TotalEntityCount))
	imgui.Text(fmt.Sprintf("Component types: %d", stats.ComponentTypeCount))
	imgui.Text(fmt.Sprintf("Singletons: %d", stats.SingletonCount))

	avg := w.history.Average()
	if avg > 0 {
		imgui.Text(fmt.Sprintf("Avg frame: %.2f ms (%.0f FPS)", avg, 1000.0/avg))
	}
	imgui.Separator()
	imgui.Text("Frame time (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &w.history.samples[0], int32(len(w.history.samples)))

	if imgui.TreeNodeStr("Components") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("ComponentTable", 2, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Type")
			imgui.TableSetupColumn("Count")
			imgui.TableHeadersRow()

			for _, c := range stats.ComponentBreakdown {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(c.Type)
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", c.Count))
			}
			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if w.Scheduler != nil && imgui.TreeNodeStr("Systems") {
		sched := w.Scheduler.GetStats()
		imgui.Text(fmt.Sprintf("Frames: %d", sched.Frames))

		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("SystemTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("System")
			imgui.TableSetupColumn("Last")
			imgui.TableSetupColumn("Avg")
			imgui.TableSetupColumn("Max")
			imgui.TableHeadersRow()

			for _, s := range sched.Systems {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(s.Name)
				imgui.TableNextColumn()
				imgui.Text(s.LastDuration.String())
				imgui.TableNextColumn()
				imgui.Text(s.AvgDuration.String())
				imgui.TableNextColumn()
				imgui.Text(s.MaxDuration.String())
			}
			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Singletons") {
		for _, name := range stats.SingletonTypes {
			imgui.BulletText(name)
		}
		imgui.TreePop()
	}

	imgui.End()
}
