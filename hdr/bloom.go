package hdr

import "fmt"

// BlurSource names the buffer a blur pass samples from: the bright-pass
// attachment of the HDR target, or one of the two ping-pong slots.
type BlurSource int

const SourceBright BlurSource = -1

const (
	DefaultBloomPasses    = 10
	DefaultBloomThreshold = 1.0
)

func (s BlurSource) String() string {
	if s == SourceBright {
		return "bright"
	}
	return fmt.Sprintf("pingpong[%d]", int(s))
}

// BlurBackend runs one separable Gaussian pass from src into ping-pong slot dst.
type BlurBackend interface {
	BlurPass(src BlurSource, dst int, horizontal bool) error
}

// Bloom drives the iterative two-pass blur over the ping-pong pair.
type Bloom struct {
	// Passes counts single-direction passes; they alternate H, V, H, ...
	Passes int
}

// pingPongSlot is the slot a pass of the given orientation writes to.
func pingPongSlot(horizontal bool) int {
	if horizontal {
		return 1
	}
	return 0
}

// Run blurs the bright buffer and returns the buffer holding the result,
// i.e. the slot written by the last pass (SourceBright when Passes is 0).
func (b Bloom) Run(backend BlurBackend) (BlurSource, error) {
	src := SourceBright
	horizontal := true
	for i := 0; i < b.Passes; i++ {
		dst := pingPongSlot(horizontal)
		if err := backend.BlurPass(src, dst, horizontal); err != nil {
			return src, fmt.Errorf("blur pass %d: %w", i, err)
		}
		src = BlurSource(dst)
		horizontal = !horizontal
	}
	return src, nil
}
