package hdr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type keys map[Action]bool

func (k keys) pressed(a Action) bool { return k[a] }

func TestControlsOperatorSelection(t *testing.T) {
	var c Controls
	s := testState()

	c.Apply(&s, keys{ActionOperatorDrago: true}.pressed)
	assert.Equal(t, OperatorDrago, s.Operator)

	c.Apply(&s, keys{ActionOperatorNone: true}.pressed)
	assert.Equal(t, OperatorNone, s.Operator)

	c.Apply(&s, keys{ActionOperatorExponential: true}.pressed)
	assert.Equal(t, OperatorExponential, s.Operator)
}

func TestControlsToggleIsEdgeTriggered(t *testing.T) {
	var c Controls
	s := testState()
	s.DynamicExposure = false

	held := keys{ActionToggleDynamic: true}
	for i := 0; i < 30; i++ {
		c.Apply(&s, held.pressed)
	}
	assert.True(t, s.DynamicExposure, "holding Space toggles once")

	c.Apply(&s, keys{}.pressed)
	c.Apply(&s, held.pressed)
	assert.False(t, s.DynamicExposure)
}

func TestControlsKeysAreIndependent(t *testing.T) {
	var c Controls
	s := testState()
	s.BloomEnabled = true

	// Holding an operator key must not swallow a bloom press.
	c.Apply(&s, keys{ActionOperatorReinhard: true}.pressed)
	c.Apply(&s, keys{ActionOperatorReinhard: true, ActionToggleBloom: true}.pressed)
	assert.False(t, s.BloomEnabled)

	c.Apply(&s, keys{ActionOperatorReinhard: true}.pressed)
	c.Apply(&s, keys{ActionOperatorReinhard: true, ActionOperatorDrago: true}.pressed)
	assert.Equal(t, OperatorDrago, s.Operator)
}

func TestControlsManualExposure(t *testing.T) {
	var c Controls
	s := testState()
	s.DynamicExposure = false
	s.Exposure = s.MaxExposure - 0.005

	up := keys{ActionExposureUp: true}
	for i := 0; i < 100; i++ {
		c.Apply(&s, up.pressed)
	}
	assert.Greater(t, s.Exposure, s.MaxExposure)

	s.Exposure = 0.0025
	down := keys{ActionExposureDown: true}
	for i := 0; i < 10; i++ {
		c.Apply(&s, down.pressed)
	}
	assert.Equal(t, float32(0), s.Exposure)
}

func TestControlsQuitAndSnapshot(t *testing.T) {
	var c Controls
	s := testState()

	res := c.Apply(&s, keys{ActionQuit: true}.pressed)
	assert.True(t, res.Quit)

	res = c.Apply(&s, keys{ActionSnapshot: true}.pressed)
	assert.True(t, res.Snapshot)
	res = c.Apply(&s, keys{ActionSnapshot: true}.pressed)
	assert.False(t, res.Snapshot)
}

func TestControlsExposureDownWinsOverUp(t *testing.T) {
	var c Controls
	s := testState()
	s.Exposure = 0

	both := keys{ActionExposureDown: true, ActionExposureUp: true}
	for i := 0; i < 10; i++ {
		c.Apply(&s, both.pressed)
	}
	assert.Zero(t, s.Exposure)

	s.Exposure = 1
	c.Apply(&s, both.pressed)
	assert.InDelta(t, 1-ManualExposureStep, s.Exposure, 1e-6)
}
