package hdr

// Action is an input-independent user command. The application maps keys to
// actions; Controls only sees whether each action's key is held.
type Action int

const (
	ActionOperatorNone Action = iota
	ActionOperatorReinhard
	ActionOperatorExponential
	ActionOperatorDrago
	ActionToggleDynamic
	ActionToggleBloom
	ActionExposureDown
	ActionExposureUp
	ActionQuit
	ActionSnapshot

	actionCount
)

// ManualExposureStep is applied once per frame while Q or E is held.
const ManualExposureStep = 0.001

// ControlResult reports the actions the caller has to carry out itself.
type ControlResult struct {
	Quit     bool
	Snapshot bool
}

// Controls turns held keys into IlluminationState changes. Toggles and
// operator selection fire once per press; exposure keys repeat every frame.
type Controls struct {
	wasDown [actionCount]bool
}

// edge reports a press transition for a and remembers the current state.
func (c *Controls) edge(a Action, down bool) bool {
	fired := down && !c.wasDown[a]
	c.wasDown[a] = down
	return fired
}

// Apply polls every action once and updates state. Holding both exposure
// keys only lowers exposure.
func (c *Controls) Apply(state *IlluminationState, pressed func(Action) bool) ControlResult {
	var res ControlResult

	for a := ActionOperatorNone; a <= ActionOperatorDrago; a++ {
		if c.edge(a, pressed(a)) {
			state.Operator = ToneMapOperator(a - ActionOperatorNone)
		}
	}
	if c.edge(ActionToggleDynamic, pressed(ActionToggleDynamic)) {
		state.DynamicExposure = !state.DynamicExposure
	}
	if c.edge(ActionToggleBloom, pressed(ActionToggleBloom)) {
		state.BloomEnabled = !state.BloomEnabled
	}

	// Manual exposure ignores MaxExposure; the controller clamps it back
	// once dynamic mode runs again. Q wins when both keys are held.
	if pressed(ActionExposureDown) {
		state.Exposure -= ManualExposureStep
		if state.Exposure < 0 {
			state.Exposure = 0
		}
	} else if pressed(ActionExposureUp) {
		state.Exposure += ManualExposureStep
	}

	res.Quit = pressed(ActionQuit)
	res.Snapshot = c.edge(ActionSnapshot, pressed(ActionSnapshot))
	return res
}
