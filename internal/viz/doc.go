// Package viz renders planes and flights in the terminal.
//
// [Model] is a Bubble Tea program that ticks a plane live and draws a side
// view of its layout, pitched by the current attitude, next to airspeed and
// pitch traces. [Report] renders the static stability summary used by the
// CLI.
//
// # Key Bindings
//
//	Space  - Pause/Resume
//	R      - Reset airspeed, pitch and angular velocity
//	Up/K   - Increase thrust
//	Down/J - Decrease thrust
//	G      - Toggle a gust at the nose
//	?      - Show help overlay
//	Q      - Quit
package viz
