package artifact_test

import (
	"testing"

	"github.com/pontos-detect/pontos/artifact"
)

func TestState(t *testing.T) {
	testCases := []struct {
		state    artifact.State
		name     string
		terminal bool
	}{
		{state: artifact.NotPresent, name: "not-present"},
		{state: artifact.Downloading, name: "downloading"},
		{state: artifact.Verifying, name: "verifying"},
		{state: artifact.Ready, name: "ready", terminal: true},
		{state: artifact.Failed, name: "failed", terminal: true},
		{state: artifact.State(9), name: "State(9)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.state.String(); got != tc.name {
				t.Errorf("got %q, want %q", got, tc.name)
			}
			if got := tc.state.Terminal(); got != tc.terminal {
				t.Errorf("Terminal() = %v, want %v", got, tc.terminal)
			}
		})
	}
}
