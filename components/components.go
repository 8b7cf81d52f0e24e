// Package components defines ECS components for the simulation.
//
// Agents carry no behavior of their own: all coordination happens
// indirectly through the shared trail grid, so three small data
// components are the whole agent.
package components

// Position represents an agent's continuous world position, in grid
// cell units: [0, W) x [0, H) with toroidal wrapping.
type Position struct {
	X, Y float32
}

// Rotation represents an agent's heading in radians, [0, 2*Pi).
type Rotation struct {
	Heading float32
}

// Motion represents an agent's movement speed in cells per second.
// Fixed at spawn; zero is legal (the agent senses and deposits in place).
type Motion struct {
	Speed float32
}
