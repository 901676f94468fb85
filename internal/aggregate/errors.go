package aggregate

import "fmt"

// CorruptionError indicates a logic violation (§7): an Apply method
// referenced an id that Validate should have guaranteed exists. This
// should never happen against an aggregate reached only through the
// validate-then-apply pipeline; the engine recovers it at its boundary
// and reports it as a storage-class failure rather than a crash.
type CorruptionError struct {
	Where string
	Detail string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("aggregate corruption in %s: %s", e.Where, e.Detail)
}
