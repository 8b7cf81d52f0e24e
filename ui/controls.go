package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Params holds the live-tunable simulation parameters the panel edits.
type Params struct {
	DiffusionRate   float32
	EvaporationRate float32
	SensorAngle     float32
	SensorDistance  float32
	TurnSpeed       float32
}

// ControlsPanel renders a slider panel for tuning trail and sensor
// parameters while the simulation runs.
type ControlsPanel struct {
	x, y    int32
	width   int32
	visible bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		x:       x,
		y:       y,
		width:   width,
		visible: false,
	}
}

// SetVisible shows or hides the panel.
func (c *ControlsPanel) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the panel and mutates p in place as sliders move. Returns
// true if any parameter changed this frame.
func (c *ControlsPanel) Draw(p *Params) bool {
	if !c.visible {
		return false
	}

	const padding = int32(10)
	const rowHeight = int32(38)

	panelHeight := rowHeight*5 + padding*3 + 24
	rl.DrawRectangle(c.x, c.y, c.width, panelHeight, rl.Color{R: 20, G: 24, B: 32, A: 220})
	rl.DrawRectangleLines(c.x, c.y, c.width, panelHeight, rl.Color{R: 90, G: 100, B: 120, A: 255})

	y := float32(c.y + padding)
	rl.DrawText("Parameters", c.x+padding, int32(y), 16, rl.White)
	y += 24

	changed := false
	changed = c.slider(&y, "Diffusion", &p.DiffusionRate, 0, 1, "%.2f") || changed
	changed = c.slider(&y, "Evaporation", &p.EvaporationRate, 0, 0.2, "%.3f") || changed
	changed = c.slider(&y, "Sensor angle", &p.SensorAngle, 0, 1.57, "%.2f") || changed
	changed = c.slider(&y, "Sensor dist", &p.SensorDistance, 0, 30, "%.1f") || changed
	changed = c.slider(&y, "Turn speed", &p.TurnSpeed, 0, 10, "%.1f") || changed
	return changed
}

func (c *ControlsPanel) slider(y *float32, label string, v *float32, min, max float32, format string) bool {
	const padding = float32(10)
	const rowHeight = float32(38)

	x := float32(c.x) + padding
	rl.DrawText(label, int32(x), int32(*y), 12, rl.LightGray)

	next := gui.SliderBar(
		rl.Rectangle{X: x, Y: *y + 16, Width: float32(c.width) - 90, Height: 18},
		"", "",
		*v, min, max,
	)
	rl.DrawText(fmt.Sprintf(format, *v), int32(x+float32(c.width)-80), int32(*y+17), 14, rl.DarkGray)
	*y += rowHeight

	if next != *v {
		*v = next
		return true
	}
	return false
}
