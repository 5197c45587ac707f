package testsupport

import (
	"context"

	"github.com/aurelia-tools/aurelia-ls/internal/hostiface"
	"github.com/aurelia-tools/aurelia-ls/internal/ids"
)

// FakeVmReflection is a hostiface.VmReflection that reports a fixed root
// view-model type and synthetic prefix, standing in for a real
// scripting-language reflection layer the pack carries none of.
type FakeVmReflection struct {
	RootType  string
	SynthName string
}

// NewFakeVmReflection returns a FakeVmReflection reporting rootType for
// every file, with the synthetic prefix "__au".
func NewFakeVmReflection(rootType string) FakeVmReflection {
	return FakeVmReflection{RootType: rootType, SynthName: "__au"}
}

func (f FakeVmReflection) RootVmTypeExpr(ids.SourceFileID) string { return f.RootType }
func (f FakeVmReflection) SyntheticPrefix() string                { return f.SynthName }

// RecordingChecker is a hostiface.TypeChecker that records the overlay
// source it was last given and returns a caller-supplied diagnostic
// list, so a test can both assert on the synthesized overlay and drive
// specific typecheck findings deterministically.
type RecordingChecker struct {
	Source  string
	Diags   []hostiface.TypeDiagnostic
	WantErr error
}

func (c *RecordingChecker) CheckOverlay(_ context.Context, overlaySource string, _ string) ([]hostiface.TypeDiagnostic, error) {
	c.Source = overlaySource
	return c.Diags, c.WantErr
}
