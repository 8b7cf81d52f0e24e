package systems

// TrailField is a toroidal scalar grid holding deposited trail intensity.
// Agents write into it via Deposit and read it via Sample/SenseRegion;
// the grid itself evolves through Diffuse and Evaporate once per tick.
//
// The grid doubles as the continuous agent domain: a position (x, y) in
// [0, W) x [0, H) maps to a cell by truncation. Coordinates outside the
// domain wrap, matching the agents' own toroidal movement.
type TrailField struct {
	W, H int

	// Trail intensity [0, MaxIntensity] per cell, row-major.
	Trail []float32

	// Parameters
	MaxIntensity    float32 // deposit saturation cap
	DiffusionRate   float32 // fraction of a cell spread to neighbors per tick
	EvaporationRate float32 // fraction of a cell lost per tick
	Kernel          int     // 4 or 8 neighbors

	// Scratch buffer for diffusion
	tmp []float32
}

// NewTrailField creates an all-zero trail grid.
func NewTrailField(w, h int, maxIntensity float32) *TrailField {
	return &TrailField{
		W: w, H: h,
		Trail: make([]float32, w*h),
		tmp:   make([]float32, w*h),

		MaxIntensity: maxIntensity,
		Kernel:       8,
	}
}

// SetParams configures diffusion and evaporation behavior.
func (f *TrailField) SetParams(diffusionRate, evaporationRate float32, kernel int) {
	f.DiffusionRate = diffusionRate
	f.EvaporationRate = evaporationRate
	f.Kernel = kernel
}

// CellIndex maps a continuous coordinate to its cell index, wrapping
// toroidally.
func (f *TrailField) CellIndex(x, y float32) int {
	cx := modInt(floorInt(x), f.W)
	cy := modInt(floorInt(y), f.H)
	return cy*f.W + cx
}

// Deposit adds amount to the cell containing (x, y), saturating at
// MaxIntensity. Returns the amount the cell actually absorbed, which is
// less than amount when the cap clips the deposit.
func (f *TrailField) Deposit(x, y, amount float32) float32 {
	i := f.CellIndex(x, y)
	v := f.Trail[i] + amount
	if v > f.MaxIntensity {
		absorbed := f.MaxIntensity - f.Trail[i]
		f.Trail[i] = f.MaxIntensity
		return absorbed
	}
	f.Trail[i] = v
	return amount
}

// Sample returns the intensity of the cell containing (x, y).
func (f *TrailField) Sample(x, y float32) float32 {
	return f.Trail[f.CellIndex(x, y)]
}

// SenseRegion returns the summed intensity of the (2*radius+1)^2 cell
// block centered on the cell containing (x, y). Radius 0 degenerates to
// a single-cell Sample.
func (f *TrailField) SenseRegion(x, y float32, radius int) float32 {
	if radius <= 0 {
		return f.Sample(x, y)
	}

	cx := modInt(floorInt(x), f.W)
	cy := modInt(floorInt(y), f.H)

	var total float32
	for oy := -radius; oy <= radius; oy++ {
		yy := modInt(cy+oy, f.H)
		row := yy * f.W
		for ox := -radius; ox <= radius; ox++ {
			xx := modInt(cx+ox, f.W)
			total += f.Trail[row+xx]
		}
	}
	return total
}

// Diffuse spreads each cell's value to its neighbors on the toroidal
// grid. The new value is a convex blend of the cell and its neighbor
// average, out = (1-k)*c + k*avg(neighbors), so the kernel conserves
// mass and keeps every cell within [0, MaxIntensity].
//
// Output is computed into a scratch buffer from the pre-diffusion grid;
// updating in place would let cells read partially-diffused neighbors.
func (f *TrailField) Diffuse() {
	k := f.DiffusionRate
	if k <= 0 {
		return
	}

	w, h := f.W, f.H
	src := f.Trail
	dst := f.tmp
	keep := 1 - k

	switch f.Kernel {
	case 4:
		share := k / 4
		for y := 0; y < h; y++ {
			yN := modInt(y-1, h) * w
			yS := modInt(y+1, h) * w
			row := y * w
			for x := 0; x < w; x++ {
				xW := modInt(x-1, w)
				xE := modInt(x+1, w)

				sum := src[yN+x] + src[yS+x] + src[row+xE] + src[row+xW]
				dst[row+x] = keep*src[row+x] + share*sum
			}
		}
	default: // 8-neighbor Moore kernel
		share := k / 8
		for y := 0; y < h; y++ {
			yN := modInt(y-1, h) * w
			yS := modInt(y+1, h) * w
			row := y * w
			for x := 0; x < w; x++ {
				xW := modInt(x-1, w)
				xE := modInt(x+1, w)

				sum := src[yN+xW] + src[yN+x] + src[yN+xE] +
					src[row+xW] + src[row+xE] +
					src[yS+xW] + src[yS+x] + src[yS+xE]
				dst[row+x] = keep*src[row+x] + share*sum
			}
		}
	}

	// Swap buffers
	f.Trail, f.tmp = f.tmp, f.Trail
}

// Evaporate applies exponential decay: every cell keeps a fraction
// (1 - EvaporationRate) of its value.
func (f *TrailField) Evaporate() {
	rate := f.EvaporationRate
	if rate <= 0 {
		return
	}
	retain := 1 - rate
	for i := range f.Trail {
		f.Trail[i] *= retain
	}
}

// Snapshot returns the trail grid for external consumption (rendering,
// telemetry). The slice aliases live simulation state: it is only valid
// between steps and must not be mutated; copy it to retain it.
func (f *TrailField) Snapshot() []float32 {
	return f.Trail
}

// GridSize returns the grid dimensions.
func (f *TrailField) GridSize() (int, int) {
	return f.W, f.H
}

// TotalMass returns the summed intensity of every cell.
func (f *TrailField) TotalMass() float64 {
	var total float64
	for _, v := range f.Trail {
		total += float64(v)
	}
	return total
}
