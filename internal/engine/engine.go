// Package engine orchestrates the validate→persist→apply pipeline
// (§4.6 F), owns the single in-memory aggregate, and wires it to the
// persistence adapter, the codec, the notification bus, structured
// logging, and OpenTelemetry metrics.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/n3phtys/rustixbl/internal/aggregate"
	"github.com/n3phtys/rustixbl/internal/codec"
	"github.com/n3phtys/rustixbl/internal/ledgerevents"
	"github.com/n3phtys/rustixbl/internal/notify"
	"github.com/n3phtys/rustixbl/internal/persistence"
)

// Metrics bundles the OpenTelemetry instruments the engine emits to
// (§4.6 AMBIENT). Construct via NewMetrics against any metric.Meter and
// pass the result to Open; a nil *Metrics disables them. cmd/ledgerd
// passes nil, so the CLI records no metrics.
type Metrics struct {
	Applied  metric.Int64Counter
	Rejected metric.Int64Counter
	Latency  metric.Float64Histogram
}

// NewMetrics registers the engine's instruments against meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	applied, err := meter.Int64Counter("ledger.events.applied")
	if err != nil {
		return nil, err
	}
	rejected, err := meter.Int64Counter("ledger.events.rejected")
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram("ledger.apply.latency_ms")
	if err != nil {
		return nil, err
	}
	return &Metrics{Applied: applied, Rejected: rejected, Latency: latency}, nil
}

// Config holds the engine-level knobs derived from internal/config.
type Config struct {
	Aggregate      aggregate.Config
	UsePersistence bool
	PersistenceDir string
	BoltOptions    persistence.Options
}

// Engine is the single writer over one *aggregate.State (§5): all
// mutation flows through Apply, guarded by mu.
type Engine struct {
	mu      sync.Mutex
	state   *aggregate.State
	log     *persistence.Log
	cfg     Config
	logger  *slog.Logger
	metrics *Metrics
	bus     *notify.Bus
	version uint64
}

// Open constructs an Engine. If cfg.UsePersistence is true, it opens the
// bbolt log at cfg.PersistenceDir and calls Reload to replay any
// existing history; otherwise it starts from an empty in-memory
// aggregate with persistence disabled (§6 "use_persistence: boolean").
func Open(cfg Config, logger *slog.Logger, metrics *Metrics, bus *notify.Bus) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if bus == nil {
		bus = notify.New(nil)
	}

	e := &Engine{
		state:   aggregate.New(cfg.Aggregate),
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		bus:     bus,
	}

	if cfg.UsePersistence {
		if err := os.MkdirAll(cfg.PersistenceDir, 0o755); err != nil {
			return nil, fmt.Errorf("engine: create persistence dir: %w", err)
		}
		l, err := persistence.Open(filepath.Join(cfg.PersistenceDir, "events.bolt"), cfg.BoltOptions)
		if err != nil {
			return nil, fmt.Errorf("engine: open log: %w", err)
		}
		e.log = l
		if _, err := e.Reload(context.Background()); err != nil {
			_ = l.Close()
			return nil, fmt.Errorf("engine: reload: %w", err)
		}
	}

	return e, nil
}

// Close releases the underlying log file, if persistence is enabled.
func (e *Engine) Close() error {
	if e.log == nil {
		return nil
	}
	return e.log.Close()
}

// State returns the live aggregate for read-only queries. Callers must
// not mutate it; all mutation goes through Apply.
func (e *Engine) State() *aggregate.State { return e.state }

// Version returns the current applied-event count (§5 "linearized by
// strictly increasing integer ids equal to version+1 at acceptance").
func (e *Engine) Version() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

// recoverCorruption turns a panic raised out of Validate/Apply into a
// normal error return, matching §7's "logic violation → fatal, but
// surfaced at the engine boundary as a storage-class failure" rule. An
// *aggregate.CorruptionError is named explicitly; any other panic (e.g.
// a nil-map write reached by a genuinely impossible state) is still
// recovered and reported the same way, since both indicate the
// validate-then-apply pipeline's guarantees were violated, not that the
// caller's request was bad.
func (e *Engine) recoverCorruption(errOut *error) {
	if r := recover(); r != nil {
		if ce, ok := r.(*aggregate.CorruptionError); ok {
			*errOut = fmt.Errorf("engine: aggregate corruption: %w", ce)
			e.logger.Error("aggregate corruption recovered", "error", ce)
			return
		}
		*errOut = fmt.Errorf("engine: aggregate corruption: %v", r)
		e.logger.Error("aggregate corruption recovered", "error", r)
	}
}

// Apply runs test_store_apply (§4.6): validate, then persist, then
// mutate the aggregate, advancing version by exactly one on success.
func (e *Engine) Apply(ctx context.Context, ev ledgerevents.Event) (accepted bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.recoverCorruption(&err)

	start := time.Now()

	if !ev.Validate(e.state) {
		e.logger.Debug("event rejected", "event", fmt.Sprintf("%T", ev))
		if e.metrics != nil {
			e.metrics.Rejected.Add(ctx, 1)
		}
		return false, nil
	}

	id := e.version + 1
	if e.log != nil {
		bytes, encErr := codec.Encode(ev)
		if encErr != nil {
			return false, fmt.Errorf("engine: encode: %w", encErr)
		}
		if putErr := e.log.Put(id, bytes); putErr != nil {
			e.logger.Warn("persistence write failed", "error", putErr)
			return false, putErr
		}
	}

	ev.Apply(e.state)
	e.version = id

	e.logger.Debug("event applied", "event", fmt.Sprintf("%T", ev), "version", e.version)
	if e.metrics != nil {
		e.metrics.Applied.Add(ctx, 1)
		e.metrics.Latency.Record(ctx, float64(time.Since(start).Microseconds())/1000.0)
	}

	e.bus.Publish(ctx, notify.Notification{Version: e.version, Event: ev})

	return true, nil
}

// Reload rebuilds the aggregate into a fresh state: load the snapshot if
// present, then scan the log from version+1, decoding and applying each
// entry in order (§4.6). A decoding or validation error aborts
// immediately and commits none of the replay: the engine keeps its
// previous state and version.
func (e *Engine) Reload(ctx context.Context) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.log == nil {
		return e.version, nil
	}

	snapBytes, err := persistence.ReadSnapshot(e.cfg.PersistenceDir)
	if err != nil {
		return 0, fmt.Errorf("engine: read snapshot: %w", err)
	}

	freshState := aggregate.New(e.cfg.Aggregate)
	var startVersion uint64
	if snapBytes != nil {
		v, decErr := codec.DecodeSnapshot(snapBytes, freshState)
		if decErr != nil {
			return 0, fmt.Errorf("engine: decode snapshot: %w", decErr)
		}
		startVersion = v
	}
	freshState.RebuildDerived()

	entries, err := e.log.ScanFrom(startVersion + 1)
	if err != nil {
		return 0, fmt.Errorf("engine: scan log: %w", err)
	}

	version := startVersion
	for _, entry := range entries {
		ev, decErr := codec.Decode(entry.Value)
		if decErr != nil {
			return 0, fmt.Errorf("engine: decode entry %d: %w", entry.ID, decErr)
		}
		if !ev.Validate(freshState) {
			return 0, fmt.Errorf("engine: replay entry %d failed validation: %w", entry.ID, ledgerevents.ErrReplayRejected)
		}
		ev.Apply(freshState)
		version = entry.ID
	}

	e.state = freshState
	e.version = version
	return version, nil
}

// Snapshot serializes the full aggregate to <persistence_dir>/snapshot.json
// (§4.6). No-op returning the current version if persistence is disabled.
func (e *Engine) Snapshot(ctx context.Context) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.cfg.UsePersistence {
		return e.version, nil
	}

	data, err := codec.EncodeSnapshot(e.state, e.version)
	if err != nil {
		return 0, fmt.Errorf("engine: encode snapshot: %w", err)
	}
	if err := persistence.WriteSnapshot(e.cfg.PersistenceDir, data); err != nil {
		return 0, fmt.Errorf("engine: write snapshot: %w", err)
	}
	return e.version, nil
}
