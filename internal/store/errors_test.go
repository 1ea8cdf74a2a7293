package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Class
	}{
		{"refused", errors.New("dial tcp 10.0.0.5:5432: connect: connection refused"), ClassConnectivity},
		{"dns", errors.New("dial tcp: lookup db.internal: no such host"), ClassConnectivity},
		{"unreachable", errors.New("connect: network is unreachable"), ClassConnectivity},
		{"io timeout", errors.New("read tcp 10.0.0.5:5432: i/o timeout"), ClassConnectivity},
		{"reset", errors.New("read: connection reset by peer"), ClassConnectivity},
		{"socket closed", errors.New("unexpected EOF"), ClassConnectivity},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), ClassConnectivity},
		{"schema cache code", errors.New(`PGRST002 (503 Service Unavailable): Could not query the database for the schema cache`), ClassTransient},
		{"schema cache stale", errors.New("could not find the table in the schema cache"), ClassTransient},
		{"missing relation", errors.New(`ERROR: relation "import_line_items" does not exist (SQLSTATE 42P01)`), ClassPermanent},
		{"permission", errors.New("ERROR: permission denied for table import_line_items (SQLSTATE 42501)"), ClassPermanent},
		{"bad credentials", errors.New("401 Unauthorized: invalid api key"), ClassPermanent},
		{"not found", ErrNotFound, ClassPermanent},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify("direct", tc.err)
			if got.Kind != tc.want {
				t.Errorf("Classify(%q) = %s, want %s", tc.err, got.Kind, tc.want)
			}
		})
	}
}

func TestClassify_Idempotent(t *testing.T) {
	inner := &ClassifiedError{Kind: ClassTransient, Path: "rest", Err: errors.New("schema cache")}
	got := Classify("direct", fmt.Errorf("wrapped: %w", inner))
	if got != inner {
		t.Error("an already-classified error must pass through unchanged")
	}
}

func TestClassifiedError_UnwrapPreservesSentinels(t *testing.T) {
	ce := Classify("direct", ErrNotFound)
	if !errors.Is(ce, ErrNotFound) {
		t.Error("classification must not hide sentinel errors from errors.Is")
	}
}

func TestClassifiedError_MessageKeepsRawError(t *testing.T) {
	raw := errors.New("ERROR: syntax error at or near SELECT")
	ce := Classify("direct", raw)
	if got := ce.Error(); got != "direct [permanent]: ERROR: syntax error at or near SELECT" {
		t.Errorf("unexpected message: %q", got)
	}
}
