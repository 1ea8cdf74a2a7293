package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/comexware/importdesk/internal/models"
)

// RestExecutor issues resource-oriented requests against a PostgREST-style
// interface fronting the same database, scoped to a named schema via profile
// headers. It is a lossy-but-functional fallback for environments where the
// database port is firewalled: the resource API has no joins or GROUP BY, so
// it fetches lightly-filtered rows and leaves merging and text search to the
// shared in-memory layer.
type RestExecutor struct {
	baseURL string
	apiKey  string
	schema  string
	client  *http.Client
}

// NewRestExecutor builds the fallback executor. baseURL is the resource root
// (e.g. https://host/rest/v1); apiKey is sent both as apikey and bearer.
func NewRestExecutor(baseURL, apiKey, schema string) *RestExecutor {
	return &RestExecutor{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		schema:  schema,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Name identifies the path in logs and classified errors
func (e *RestExecutor) Name() string { return "rest" }

// restError is the machine-readable error body the resource API returns
type restError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *RestExecutor) newRequest(ctx context.Context, method, table string, query url.Values, body io.Reader) (*http.Request, error) {
	u := e.baseURL + "/" + table
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if e.apiKey != "" {
		req.Header.Set("apikey", e.apiKey)
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}
	if e.schema != "" && e.schema != "public" {
		// PostgREST selects the schema through profile headers
		if method == http.MethodGet || method == http.MethodHead {
			req.Header.Set("Accept-Profile", e.schema)
		} else {
			req.Header.Set("Content-Profile", e.schema)
		}
	}
	return req, nil
}

func (e *RestExecutor) do(req *http.Request, out interface{}) error {
	resp, err := e.client.Do(req)
	if err != nil {
		return Classify(e.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr restError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return Classify(e.Name(), fmt.Errorf("%s (%s): %s", apiErr.Code, resp.Status, apiErr.Message))
		}
		return Classify(e.Name(), fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(raw))))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ClassifiedError{Kind: ClassPermanent, Path: e.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (e *RestExecutor) listQuery(f RowFilter) url.Values {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "created_at.asc,id.asc")
	if f.BusinessKey != nil {
		q.Set("business_key", "eq."+strconv.FormatInt(*f.BusinessKey, 10))
	}
	return q
}

// ListLineItems fetches raw order rows over HTTP
func (e *RestExecutor) ListLineItems(ctx context.Context, f RowFilter) ([]models.ImportLineItem, error) {
	req, err := e.newRequest(ctx, http.MethodGet, models.ImportLineItem{}.TableName(), e.listQuery(f), nil)
	if err != nil {
		return nil, &ClassifiedError{Kind: ClassPermanent, Path: e.Name(), Err: err}
	}
	var wire []restLineItem
	if err := e.do(req, &wire); err != nil {
		return nil, err
	}
	out := make([]models.ImportLineItem, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.toModel())
	}
	return out, nil
}

// ListTransit fetches raw logistics rows over HTTP
func (e *RestExecutor) ListTransit(ctx context.Context, f RowFilter) ([]models.TransitRecord, error) {
	req, err := e.newRequest(ctx, http.MethodGet, models.TransitRecord{}.TableName(), e.listQuery(f), nil)
	if err != nil {
		return nil, &ClassifiedError{Kind: ClassPermanent, Path: e.Name(), Err: err}
	}
	var wire []restTransitRecord
	if err := e.do(req, &wire); err != nil {
		return nil, err
	}
	out := make([]models.TransitRecord, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.toModel())
	}
	return out, nil
}

// ListReceived fetches raw receiving rows over HTTP
func (e *RestExecutor) ListReceived(ctx context.Context, f RowFilter) ([]models.ReceivedRecord, error) {
	req, err := e.newRequest(ctx, http.MethodGet, models.ReceivedRecord{}.TableName(), e.listQuery(f), nil)
	if err != nil {
		return nil, &ClassifiedError{Kind: ClassPermanent, Path: e.Name(), Err: err}
	}
	var wire []restReceivedRecord
	if err := e.do(req, &wire); err != nil {
		return nil, err
	}
	out := make([]models.ReceivedRecord, 0, len(wire))
	for _, w := range wire {
		out = append(out, w.toModel())
	}
	return out, nil
}

// UpdateLineItem patches one row by primary key. Prefer return=representation
// lets a zero-row match be told apart from a successful patch.
func (e *RestExecutor) UpdateLineItem(ctx context.Context, id uint64, fields map[string]interface{}) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return &ClassifiedError{Kind: ClassPermanent, Path: e.Name(), Err: err}
	}

	q := url.Values{}
	q.Set("id", "eq."+strconv.FormatUint(id, 10))
	req, err := e.newRequest(ctx, http.MethodPatch, models.ImportLineItem{}.TableName(), q, bytes.NewReader(payload))
	if err != nil {
		return &ClassifiedError{Kind: ClassPermanent, Path: e.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	var updated []restLineItem
	if err := e.do(req, &updated); err != nil {
		return err
	}
	if len(updated) == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping probes the resource root. PostgREST answers the root with its schema
// description, so any 2xx proves the HTTP path and credentials work.
func (e *RestExecutor) Ping(ctx context.Context) error {
	req, err := e.newRequest(ctx, http.MethodGet, "", nil, nil)
	if err != nil {
		return &ClassifiedError{Kind: ClassPermanent, Path: e.Name(), Err: err}
	}
	return e.do(req, nil)
}
