package workspace

import (
	"sort"

	"github.com/aurelia-tools/aurelia-ls/internal/semantics"
)

// schemaVersion is the command envelope's own wire-format version
// (spec.md §4.K), independent of the on-disk cache's schemaVersion
// (spec.md §6 "Cache layout") — the two evolve on different schedules.
const schemaVersion = 1

// Status is the command envelope's coarse outcome (spec.md §4.K).
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
	StatusError    Status = "error"
)

// Epistemic records how much the engine actually knows about the
// result: a confidence grade, the reason when that grade drops to
// "unknown", and every gap that contributed.
type Epistemic struct {
	Confidence    semantics.Confidence `json:"confidence"`
	UnknownReason string               `json:"unknownReason,omitempty"`
	Gaps          []string             `json:"gaps"`
}

// CacheMeta reports whether this command's result came from the
// compile cache, and which tier served it.
type CacheMeta struct {
	Hit  bool   `json:"hit"`
	Tier string `json:"tier"` // "memory" | "miss"
}

// Meta carries the command's identity and resource accounting.
type Meta struct {
	CommandID string    `json:"commandId"`
	Memory    uint64    `json:"memory"`
	Cache     CacheMeta `json:"cache"`
}

// Envelope is the deterministic, JSON-serializable shape every command
// returns (spec.md §4.K, §6 "Command envelope"). encoding/json emits keys
// in struct-field declaration order, which is stable but not
// alphabetical; no key sorting is applied. Map-valued fields are avoided
// wherever order matters.
type Envelope struct {
	SchemaVersion int       `json:"schemaVersion"`
	Status        Status    `json:"status"`
	Result        any       `json:"result"`
	Epistemic     Epistemic `json:"epistemic"`
	Meta          Meta      `json:"meta"`
}

func gapStrings(gaps []semantics.Gap) []string {
	out := make([]string, 0, len(gaps))
	for _, g := range gaps {
		if g.Suppressed {
			continue
		}
		label := g.What
		if g.Code != "" {
			label = g.Code + ": " + g.What
		}
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}
