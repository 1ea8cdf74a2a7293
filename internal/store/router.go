package store

import (
	"context"
	"log"
	"sync/atomic"
)

// AccessState is the process-wide answer to "which path works here"
type AccessState int32

const (
	StateUnknown AccessState = iota
	StateDirect
	StateREST
)

func (s AccessState) String() string {
	switch s {
	case StateDirect:
		return "direct"
	case StateREST:
		return "rest"
	default:
		return "unknown"
	}
}

// AccessRouter chooses the executor for each call and remembers the outcome.
// It is a one-shot circuit breaker: the first connectivity failure on the
// direct path reroutes every later call to REST, and the breaker never closes
// again during the router's lifetime. The failures that trip it (a firewalled
// database port, broken DNS) are environmental and do not heal within a
// deployment; a process restart is the re-probe. TestConnection on the façade
// probes both paths regardless of the pin so operators can see when a restart
// would help.
//
// State lives in an atomic owned by this instance. Concurrent first calls may
// race the initial probe; the cost is a duplicate direct attempt, never a
// corrupted state, and all callers converge on one path.
type AccessRouter struct {
	direct    QueryExecutor
	rest      QueryExecutor
	forceRest bool
	retry     RetryPolicy
	state     atomic.Int32
	logger    *log.Logger
}

// NewAccessRouter wires both executors. rest may be nil when no REST endpoint
// is configured; failover is then impossible and direct errors propagate.
// forceRest pins REST unconditionally (operator escape hatch).
func NewAccessRouter(direct, rest QueryExecutor, forceRest bool, retry RetryPolicy, logger *log.Logger) *AccessRouter {
	if logger == nil {
		logger = log.Default()
	}
	r := &AccessRouter{
		direct:    direct,
		rest:      rest,
		forceRest: forceRest && rest != nil,
		retry:     retry,
		logger:    logger,
	}
	if r.forceRest {
		r.state.Store(int32(StateREST))
	}
	return r
}

// State reports the current pin
func (r *AccessRouter) State() AccessState {
	return AccessState(r.state.Load())
}

// Direct exposes the direct executor for diagnostics
func (r *AccessRouter) Direct() QueryExecutor { return r.direct }

// Rest exposes the REST executor for diagnostics; may be nil
func (r *AccessRouter) Rest() QueryExecutor { return r.rest }

// Do runs op against the chosen executor, wrapped in the retry policy.
// Transient-backend failures retry in place; a connectivity failure on the
// direct path flips the pin and replays the same logical request once against
// REST, returning that result as-is; permanent failures propagate untouched.
func (r *AccessRouter) Do(ctx context.Context, op func(context.Context, QueryExecutor) error) error {
	ex := r.pick()

	err := r.retry.Do(ctx, ex.Name(), func(c context.Context) error {
		return op(c, ex)
	})
	if err == nil {
		r.pin(ex)
		return nil
	}

	ce := Classify(ex.Name(), err)
	if ce.Kind == ClassConnectivity && ex == r.direct && r.rest != nil {
		r.logger.Printf("⚠️  Direct path unreachable (%v), rerouting to REST for the remainder of the process", ce.Err)
		r.state.Store(int32(StateREST))

		restErr := r.retry.Do(ctx, r.rest.Name(), func(c context.Context) error {
			return op(c, r.rest)
		})
		if restErr == nil {
			return nil
		}
		return Classify(r.rest.Name(), restErr)
	}

	return ce
}

func (r *AccessRouter) pick() QueryExecutor {
	switch r.State() {
	case StateREST:
		return r.rest
	case StateDirect:
		return r.direct
	default:
		// Unknown: probe direct first, it is the cheaper path when reachable
		return r.direct
	}
}

// pin records the first successful path. Later successes never move the pin;
// only a classified connectivity failure does, in Do.
func (r *AccessRouter) pin(ex QueryExecutor) {
	target := StateDirect
	if ex == r.rest {
		target = StateREST
	}
	if r.state.CompareAndSwap(int32(StateUnknown), int32(target)) {
		r.logger.Printf("🔌 Access path resolved: %s", target)
	}
}
