// Package debugui provides immediate-mode GUI integration for ECS applications using Dear ImGui.
// Windows are ordinary components; WindowSystem and ImguiSystem queue their
// render functions on the frame's command buffer, so they draw after every
// other system has run.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tumbletris/ecs"
)

// ImguiItem is a component that holds a Dear ImGui render function.
type ImguiItem struct {
	Render func()
}

// ImguiInputState mirrors whether ImGui wants the mouse or keyboard this
// frame. Gameplay input should be ignored while it does.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// RegisterComponents registers every debugui component type.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[ImguiItem](registry)
	ecs.RegisterComponent[StatsWindow](registry)
	ecs.RegisterComponent[Inspector](registry)
}

// ImguiSystem updates ImguiInputState and defers every ImguiItem render.
type ImguiSystem struct {
	Items      ecs.Query[struct{ *ImguiItem }]
	InputState ecs.Singleton[ImguiInputState]
}

func (i *ImguiSystem) Execute(frame *ecs.UpdateFrame) {
	if state := i.InputState.Get(); state != nil {
		io := imgui.CurrentIO()
		state.WantCaptureMouse = io.WantCaptureMouse()
		state.WantCaptureKeyboard = io.WantCaptureKeyboard()
	}

	for item := range i.Items.Values() {
		if item.ImguiItem.Render != nil {
			frame.Commands.Defer(item.ImguiItem.Render)
		}
	}
}

// WindowSystem defers the built-in stats and inspector windows.
type WindowSystem struct {
	Stats      ecs.Query[struct{ *StatsWindow }]
	Inspectors ecs.Query[struct{ *Inspector }]
}

func (w *WindowSystem) Execute(frame *ecs.UpdateFrame) {
	storage := frame.Storage
	dt := float32(frame.DeltaTime)

	for item := range w.Stats.Values() {
		window := item.StatsWindow
		window.history.Push(dt * 1000)
		frame.Commands.Defer(func() { window.Render(storage) })
	}
	for item := range w.Inspectors.Values() {
		inspector := item.Inspector
		frame.Commands.Defer(func() { inspector.Render(storage) })
	}
}

// SpawnWindows adds a stats window and an inspector for the given entities.
func SpawnWindows(storage *ecs.Storage, stats StatsWindow, inspector Inspector) {
	storage.Spawn(stats)
	storage.Spawn(inspector)
}
