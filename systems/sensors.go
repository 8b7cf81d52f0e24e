package systems

import "math"

// Sensor model: each agent reads the trail field with three probes,
// straight ahead and offset left/right by the sensor angle, each at the
// sensor distance, then turns toward the strongest reading. The model
// owns no state; randomness for tie-breaking is supplied by the caller
// so that parallel scheduling cannot affect outcomes.

// SensorSettings bundles the probe geometry and steering limits an
// agent applies each tick.
type SensorSettings struct {
	Angle     float32 // radians between center and side probes
	Distance  float32 // cells from agent to probe center
	Radius    int     // probe kernel radius in cells
	MaxTurn   float32 // max radians turned per tick
	TieJitter float32 // turn fraction when all three probes are equal
}

// ProbePoint returns the center of one sensor probe for an agent at
// (x, y) with the given heading. angleOffset is 0 for the center probe,
// +Angle for the left probe and -Angle for the right probe.
func ProbePoint(x, y, heading, angleOffset, dist float32) (float32, float32) {
	a := float64(heading + angleOffset)
	px := x + float32(math.Cos(a))*dist
	py := y + float32(math.Sin(a))*dist
	return px, py
}

// SenseProbe samples the field for one probe. The probe center may fall
// outside the domain; SenseRegion wraps it back in.
func SenseProbe(f *TrailField, x, y, heading, angleOffset float32, s SensorSettings) float32 {
	px, py := ProbePoint(x, y, heading, angleOffset, s.Distance)
	return f.SenseRegion(px, py, s.Radius)
}

// Steer maps the three probe readings to a bounded heading delta.
// r is a uniform random value in [0, 1) used for jittered branches.
//
// Policy: the strongest probe wins; the center probe wins ties against
// either side so trails stay coherent. Two special cases keep the
// emergent branching alive: when both sides beat the center the agent
// picks a random direction, and when all three readings are exactly
// equal a small jitter breaks the symmetry that would otherwise lock
// every agent into a straight line forever.
func Steer(front, left, right, r float32, s SensorSettings) float32 {
	switch {
	case front == left && front == right:
		return (r - 0.5) * 2 * s.TieJitter * s.MaxTurn
	case front >= left && front >= right:
		return 0
	case front < left && front < right:
		return (r - 0.5) * 2 * s.MaxTurn
	case right > left:
		return -r * s.MaxTurn
	default:
		return r * s.MaxTurn
	}
}

// SteerRand generates the per-agent, per-tick random value feeding
// Steer. Hashing (seed, tick, agent) instead of drawing from a shared
// generator keeps runs reproducible regardless of how the agent pass is
// scheduled across workers.
func SteerRand(seed uint32, tick int32, agent int) float32 {
	x := uint32(agent)
	y := uint32(tick)
	h := x*374761393 + y*668265263 + seed*1442695041
	h = (h ^ (h >> 13)) * 1274126177
	h ^= h >> 16
	return float32(h&0x00FFFFFF) / float32(0x01000000)
}
