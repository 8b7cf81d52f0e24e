package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDState carries everything the heads-up display shows each frame.
type HUDState struct {
	Tick          int32
	Agents        int
	TotalMass     float64
	StepsPerFrame int
	Paused        bool
}

// HUD draws the status line in the top-left corner.
type HUD struct {
	x, y int32
}

// NewHUD creates a HUD anchored at (x, y).
func NewHUD(x, y int32) *HUD {
	return &HUD{x: x, y: y}
}

// Draw renders the status line.
func (h *HUD) Draw(s HUDState) {
	line := fmt.Sprintf("tick %d | agents %d | mass %.1f | speed %dx | fps %d",
		s.Tick, s.Agents, s.TotalMass, s.StepsPerFrame, rl.GetFPS())
	if s.Paused {
		line += " | PAUSED"
	}
	rl.DrawText(line, h.x+1, h.y+1, 14, rl.Black)
	rl.DrawText(line, h.x, h.y, 14, rl.RayWhite)
}
