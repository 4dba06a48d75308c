package app

import "time"

// FrameMsg drives the per-frame drain and render.
type FrameMsg struct {
	Time time.Time
}
