// Package ledgerevents implements the complete event taxonomy of §4.4:
// one Go type per event kind, each with a Validate precondition and an
// Apply effect over an *aggregate.State. Validate is always called
// before Apply; Apply is expected to run to completion — a Validate-gated
// Apply that still fails indicates aggregate corruption (§7), not a
// normal rejection.
//
// Ids are assigned only inside Apply, never inside Validate, so that a
// rejected event never consumes a counter value (§9).
package ledgerevents

import (
	"errors"

	"github.com/n3phtys/rustixbl/internal/aggregate"
)

// ErrReplayRejected is wrapped into the error the engine returns when a
// logged entry fails Validate during replay — a logic violation (§7),
// since every entry in the log passed Validate once already before
// being persisted.
var ErrReplayRejected = errors.New("ledgerevents: logged entry failed validation during replay")

// Event is the closed interface every event kind implements. Dispatch
// across concrete kinds happens by type switch in internal/codec, not by
// virtual method dispatch beyond these two methods — mirroring the
// original's "structural match, not per-kind interface objects" (§9).
type Event interface {
	// Validate reports whether Apply may run against s. It must not
	// mutate s.
	Validate(s *aggregate.State) bool

	// Apply performs the event's effect on s. Callers must only invoke
	// Apply after a true Validate result against the same state.
	Apply(s *aggregate.State)
}
