package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// TrailRenderer draws the trail field as a full-window texture. The grid is
// uploaded once per frame; scaling to screen size happens on the GPU.
type TrailRenderer struct {
	texture rl.Texture2D
	pixels  []color.RGBA
	gridW   int
	gridH   int

	screenW, screenH float32
	maxIntensity     float32
	initialized      bool
}

// NewTrailRenderer creates a trail renderer. Call Init after the raylib
// window exists.
func NewTrailRenderer(screenW, screenH int32) *TrailRenderer {
	return &TrailRenderer{
		screenW: float32(screenW),
		screenH: float32(screenH),
	}
}

// Init allocates the GPU texture for a gridW x gridH field.
func (r *TrailRenderer) Init(gridW, gridH int, maxIntensity float32) {
	if r.initialized {
		return
	}
	r.gridW = gridW
	r.gridH = gridH
	if maxIntensity <= 0 {
		maxIntensity = 1
	}
	r.maxIntensity = maxIntensity
	r.pixels = make([]color.RGBA, gridW*gridH)

	img := rl.GenImageColor(gridW, gridH, rl.Black)
	r.texture = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(r.texture, rl.FilterBilinear)

	r.initialized = true
}

// Update uploads the current field values to the texture.
func (r *TrailRenderer) Update(grid []float32) {
	if !r.initialized || len(grid) != len(r.pixels) {
		return
	}
	inv := 1 / r.maxIntensity
	for i, v := range grid {
		t := v * inv
		if t > 1 {
			t = 1
		}
		r.pixels[i] = intensityColor(t)
	}
	rl.UpdateTexture(r.texture, r.pixels)
}

// Draw stretches the field texture over the whole window.
func (r *TrailRenderer) Draw() {
	if !r.initialized {
		return
	}
	rl.DrawTexturePro(
		r.texture,
		rl.Rectangle{X: 0, Y: 0, Width: float32(r.gridW), Height: float32(r.gridH)},
		rl.Rectangle{X: 0, Y: 0, Width: r.screenW, Height: r.screenH},
		rl.Vector2{X: 0, Y: 0},
		0,
		rl.White,
	)
}

// DrawAgents overlays agent positions as single points. xs and ys are in
// grid coordinates; the renderer scales them to screen space.
func (r *TrailRenderer) DrawAgents(xs, ys []float32, tint color.RGBA) {
	if !r.initialized || len(xs) != len(ys) {
		return
	}
	sx := r.screenW / float32(r.gridW)
	sy := r.screenH / float32(r.gridH)
	for i := range xs {
		rl.DrawPixelV(rl.Vector2{X: xs[i] * sx, Y: ys[i] * sy}, tint)
	}
}

// Unload releases the GPU texture.
func (r *TrailRenderer) Unload() {
	if !r.initialized {
		return
	}
	rl.UnloadTexture(r.texture)
	r.initialized = false
}

// intensityColor maps a normalized intensity to the display gradient:
// near-black through deep blue and cyan up to warm white at saturation.
func intensityColor(t float32) color.RGBA {
	var r, g, b uint8
	switch {
	case t < 0.25:
		k := t / 0.25
		r = uint8(5 + k*15)
		g = uint8(8 + k*40)
		b = uint8(20 + k*110)
	case t < 0.5:
		k := (t - 0.25) / 0.25
		r = uint8(20 + k*30)
		g = uint8(48 + k*130)
		b = uint8(130 + k*70)
	case t < 0.75:
		k := (t - 0.5) / 0.25
		r = uint8(50 + k*150)
		g = uint8(178 + k*50)
		b = uint8(200 - k*80)
	default:
		k := (t - 0.75) / 0.25
		r = uint8(200 + k*55)
		g = uint8(228 + k*27)
		b = uint8(120 + k*135)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
