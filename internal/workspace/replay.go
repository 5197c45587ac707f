package workspace

import (
	"context"
	"reflect"
)

// CommandFunc is one bound invocation of an engine command — a closure
// over whichever Engine, URI, and arguments the caller captured when
// recording.
type CommandFunc func(ctx context.Context) Envelope

// RecordedCommand is one entry of a pressure scenario (spec.md §4.K
// "replay"): a label, the bound invocation to re-run, and the envelope
// observed when it was first recorded.
type RecordedCommand struct {
	Label    string
	Invoke   CommandFunc
	Envelope Envelope
}

// Scenario is a recorded sequence of commands plus their original
// outputs, replayable against a workspace to check for divergence.
type Scenario struct {
	Commands []RecordedCommand
}

// Record runs invoke once, appends the result as this scenario's next
// step, and returns the envelope it produced (so the caller can also use
// it as the command's live answer).
func (s *Scenario) Record(ctx context.Context, label string, invoke CommandFunc) Envelope {
	env := invoke(ctx)
	s.Commands = append(s.Commands, RecordedCommand{Label: label, Invoke: invoke, Envelope: env})
	return env
}

// Divergence is one step whose replayed output didn't match the
// recording.
type Divergence struct {
	Index int
	Label string
	Want  Envelope
	Got   Envelope
}

// Replay re-invokes every recorded command's closure (rebound, by the
// caller, to whichever workspace should replay the scenario — typically
// a freshly constructed one seeded identically to the one that recorded
// it) and reports every divergence. An empty result is spec.md §4.K's
// "divergence count = 0".
//
// Comparison deliberately excludes Meta entirely: commandId/memory/cache
// are per-process execution telemetry, not part of a command's
// deterministic answer — two workspaces replaying the same scenario
// never share a process's allocator state, so requiring Meta equality
// would make every replay diverge for a reason spec.md §8 invariant 1
// isn't actually about.
func (s *Scenario) Replay(ctx context.Context) []Divergence {
	var out []Divergence
	for i, rec := range s.Commands {
		got := rec.Invoke(ctx)
		if !equalForReplay(rec.Envelope, got) {
			out = append(out, Divergence{Index: i, Label: rec.Label, Want: rec.Envelope, Got: got})
		}
	}
	return out
}

func equalForReplay(a, b Envelope) bool {
	return a.SchemaVersion == b.SchemaVersion &&
		a.Status == b.Status &&
		reflect.DeepEqual(a.Result, b.Result) &&
		a.Epistemic.Confidence == b.Epistemic.Confidence &&
		a.Epistemic.UnknownReason == b.Epistemic.UnknownReason &&
		reflect.DeepEqual(a.Epistemic.Gaps, b.Epistemic.Gaps)
}
