// Package engine implements the DSP algorithm set the analysis layer
// delegates to: EBU R128 loudness, tempo estimation, key extraction and the
// spectral primitives backing the key fallback path. The analysis layer
// talks to it through small consumer-side interfaces so tests can substitute
// failing stand-ins per algorithm.
package engine

import (
	"context"
	"fmt"
)

// Version identifies the algorithm set. Reported by Init and surfaced to
// callers of the orchestrator.
const Version = "1.4.2"

// Engine is the shared DSP resource. It is cheap to allocate but Init must
// complete before any algorithm is invoked; the orchestrator guards that
// with a single-flight initialization.
type Engine struct {
	profiles map[string]keyProfilePair
	ready    bool
}

// New returns an uninitialized engine.
func New() *Engine {
	return &Engine{}
}

// Init performs one-time startup: key profile table construction and a
// self-check of the weighting filter design at common sample rates. Returns
// the engine version string.
func (e *Engine) Init(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	e.profiles = buildKeyProfiles()

	// Filter design sanity check: coefficients must be finite for every
	// rate we expect decoders to hand us.
	for _, rate := range []int{8000, 22050, 44100, 48000, 96000, 192000} {
		if err := validateWeighting(rate); err != nil {
			return "", fmt.Errorf("weighting filter design failed at %d Hz: %w", rate, err)
		}
	}

	e.ready = true
	return fmt.Sprintf("nextlight-dsp %s", Version), nil
}

// Ready reports whether Init has completed successfully.
func (e *Engine) Ready() bool {
	return e.ready
}
