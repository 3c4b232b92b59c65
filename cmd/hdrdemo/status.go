package main

import (
	"fmt"
	"strings"

	"hdr-lighting/hdr"
)

// fpsCounter counts frames and reports the rate once per second.
type fpsCounter struct {
	frames int
	since  float64
}

func newFPSCounter(now float64) *fpsCounter {
	return &fpsCounter{since: now}
}

// tick records a frame at time now (seconds). It returns the frame count
// of the last full second when one has elapsed.
func (c *fpsCounter) tick(now float64) (int, bool) {
	c.frames++
	if now-c.since < 1.0 {
		return 0, false
	}
	n := c.frames
	c.frames = 0
	c.since = now
	return n, true
}

// statusTitle is the window title: base title, FPS and the state line.
func statusTitle(base string, fps int, s *hdr.IlluminationState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s | FPS: %d | %s", base, fps, hdr.Diagnostic(s))
	if s.Operator == hdr.OperatorDrago || s.DynamicExposure {
		fmt.Fprintf(&b, " | avg=%.3f max=%.2f", s.AvgLuminance, s.MaxLuminance)
	}
	return b.String()
}
