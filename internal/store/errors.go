package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// Class labels a failed executor attempt. The label decides what happens
// next: connectivity failures reroute to the other access path for the rest
// of the process lifetime, transient-backend failures get a bounded retry,
// permanent failures propagate immediately.
type Class string

const (
	// ClassConnectivity means the transport path itself is unusable in this
	// environment (firewalled port, DNS failure, refused connection).
	ClassConnectivity Class = "connectivity"
	// ClassTransient means a backend condition known to self-resolve within
	// seconds, such as a stale server-side schema cache after a cold start.
	ClassTransient Class = "transient-backend"
	// ClassPermanent means a caller, query or permission error. Retrying or
	// switching paths cannot help.
	ClassPermanent Class = "permanent"
)

// ClassifiedError wraps an executor failure with its class and the name of
// the path that produced it. The raw message is preserved for operator
// diagnosis.
type ClassifiedError struct {
	Kind Class
	Path string
	Err  error
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Path, e.Kind, e.Err)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// ErrNotFound signals that no row exists for the requested business key. It
// is a caller error, not a transport failure, and is never retried.
var ErrNotFound = errors.New("record not found")

// connectivitySubstrings identify transport-level failures by message. The
// pgx and net error chains do not expose a uniform type for all of these, so
// message matching remains the reliable common denominator.
var connectivitySubstrings = []string{
	"connection refused",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"connection reset by peer",
	"broken pipe",
	"unexpected eof",
	"dial tcp",
	"client_connect_error",
}

// transientSubstrings identify the backend schema-cache condition. PostgREST
// reports PGRST002 while the cache is rebuilding and PGRST205 when a table is
// not yet present in the stale cache; both heal without client changes.
var transientSubstrings = []string{
	"pgrst002",
	"pgrst205",
	"schema cache",
}

// Classify labels err as connectivity, transient-backend or permanent.
// Already-classified errors pass through unchanged, so layered callers can
// classify defensively without double wrapping.
func Classify(path string, err error) *ClassifiedError {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce
	}

	msg := strings.ToLower(err.Error())

	for _, s := range transientSubstrings {
		if strings.Contains(msg, s) {
			return &ClassifiedError{Kind: ClassTransient, Path: path, Err: err}
		}
	}

	if isConnectivity(err, msg) {
		return &ClassifiedError{Kind: ClassConnectivity, Path: path, Err: err}
	}

	return &ClassifiedError{Kind: ClassPermanent, Path: path, Err: err}
}

func isConnectivity(err error, msg string) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}
	// A deadline blown while dialing or reading means the path never
	// answered; caller cancellation is handled before classification.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	for _, s := range connectivitySubstrings {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
