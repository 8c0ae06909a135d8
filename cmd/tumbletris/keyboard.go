package main

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/plus3/tumbletris/ecs"
	"github.com/plus3/tumbletris/ecs/debugui"
	"github.com/plus3/tumbletris/tetris"
)

var bindings = map[tetris.Action][]ebiten.Key{
	tetris.ActionLeft:      {ebiten.KeyArrowLeft, ebiten.KeyA},
	tetris.ActionRight:     {ebiten.KeyArrowRight, ebiten.KeyD},
	tetris.ActionRotateCCW: {ebiten.KeyArrowUp, ebiten.KeyX},
	tetris.ActionRotateCW:  {ebiten.KeyArrowDown, ebiten.KeyZ},
}

// keyboard reads the ebiten key state. Input is swallowed while an ImGui
// widget has keyboard focus.
type keyboard struct {
	imgui *ecs.Singleton[debugui.ImguiInputState]
}

func (k keyboard) Held(action tetris.Action) bool {
	if k.imgui != nil {
		if state := k.imgui.Get(); state != nil && state.WantCaptureKeyboard {
			return false
		}
	}
	for _, key := range bindings[action] {
		if ebiten.IsKeyPressed(key) {
			return true
		}
	}
	return false
}

func quitRequested() bool {
	return ebiten.IsKeyPressed(ebiten.KeyQ) || ebiten.IsKeyPressed(ebiten.KeyEscape)
}
