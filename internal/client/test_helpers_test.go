package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	internalhttp "github.com/fivetwenty-io/hscrm/internal/http"
	"github.com/fivetwenty-io/hscrm/pkg/hscrm"
)

// recordedCall is a request seen by fakeCRM.
type recordedCall struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

// decode unmarshals the recorded body into v.
func (c recordedCall) decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(c.Body, v))
}

// fakeCRM is an httptest server with per-route handlers that records every
// request it receives.
type fakeCRM struct {
	mux    *http.ServeMux
	server *httptest.Server

	mu    sync.Mutex
	calls []recordedCall
}

func newFakeCRM(t *testing.T) *fakeCRM {
	t.Helper()

	fake := &fakeCRM{mux: http.NewServeMux()}
	fake.server = httptest.NewServer(http.HandlerFunc(fake.serve))
	t.Cleanup(fake.server.Close)

	return fake
}

func (f *fakeCRM) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	_ = r.Body.Close()

	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Body:   body,
	})
	f.mu.Unlock()

	r.Body = io.NopCloser(bytes.NewReader(body))
	f.mux.ServeHTTP(w, r)
}

// handle registers a handler for a ServeMux pattern such as
// "POST /crm/v3/objects/contacts/search".
func (f *fakeCRM) handle(pattern string, handler http.HandlerFunc) {
	f.mux.HandleFunc(pattern, handler)
}

// respond registers a handler that always writes the same JSON response.
func (f *fakeCRM) respond(pattern string, status int, body interface{}) {
	f.handle(pattern, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, body)
	})
}

// sequence registers a handler that serves the responses in order and
// repeats the last one once they run out.
func (f *fakeCRM) sequence(pattern string, responses ...fakeResponse) {
	var (
		mu   sync.Mutex
		next int
	)

	f.handle(pattern, func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		response := responses[min(next, len(responses)-1)]
		next++
		mu.Unlock()

		writeJSON(w, response.status, response.body)
	})
}

// callsTo returns the recorded calls matching method and path.
func (f *fakeCRM) callsTo(method, path string) []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []recordedCall

	for _, call := range f.calls {
		if call.Method == method && call.Path == path {
			matched = append(matched, call)
		}
	}

	return matched
}

// allCalls returns every recorded call in arrival order.
func (f *fakeCRM) allCalls() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]recordedCall(nil), f.calls...)
}

// client builds a Client against the fake server with instant sleeps.
func (f *fakeCRM) client(mutators ...func(*hscrm.Config)) (*Client, *sleepRecorder) {
	return NewTestClient(f.server.URL, mutators...)
}

type fakeResponse struct {
	status int
	body   interface{}
}

func okResponse(body interface{}) fakeResponse {
	return fakeResponse{status: http.StatusOK, body: body}
}

func gatewayTimeout() fakeResponse {
	return fakeResponse{status: http.StatusGatewayTimeout, body: map[string]string{"message": "gateway timeout"}}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	if body == nil {
		w.WriteHeader(status)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// sleepRecorder is a SleepFunc that returns immediately and records every
// requested wait.
type sleepRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.waits = append(s.waits, d)
	s.mu.Unlock()

	return ctx.Err()
}

func (s *sleepRecorder) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]time.Duration(nil), s.waits...)
}

// capturingLogger records log entries for assertions.
type capturingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

func (l *capturingLogger) log(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, logEntry{Level: level, Message: msg, Fields: fields})
}

func (l *capturingLogger) Debug(msg string, fields map[string]interface{}) { l.log("debug", msg, fields) }
func (l *capturingLogger) Info(msg string, fields map[string]interface{})  { l.log("info", msg, fields) }
func (l *capturingLogger) Warn(msg string, fields map[string]interface{})  { l.log("warn", msg, fields) }
func (l *capturingLogger) Error(msg string, fields map[string]interface{}) { l.log("error", msg, fields) }

// withMessage returns the entries logged with msg.
func (l *capturingLogger) withMessage(msg string) []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var matched []logEntry

	for _, entry := range l.entries {
		if entry.Message == msg {
			matched = append(matched, entry)
		}
	}

	return matched
}

// states returns the workflow states logged, in order.
func (l *capturingLogger) states() []hscrm.WorkflowState {
	var states []hscrm.WorkflowState

	for _, entry := range l.withMessage("workflow transition") {
		states = append(states, hscrm.WorkflowState(entry.Fields["state"].(string)))
	}

	return states
}

// NewTestClient creates a client for baseURL with a "default" pipeline and
// no real waiting: retries and consistency polls go through the returned
// sleepRecorder.
func NewTestClient(baseURL string, mutators ...func(*hscrm.Config)) (*Client, *sleepRecorder) {
	sleeper := &sleepRecorder{}

	config := &hscrm.Config{
		APIEndpoint: baseURL,
		PipelineID:  "default",
		Retry: &hscrm.RetryConfig{
			MaxAttempts: 3,
			Backoff:     time.Minute,
			Sleep:       sleeper.sleep,
		},
		Consistency: &hscrm.ConsistencyConfig{
			InitialDelay: 2 * time.Second,
			Interval:     2 * time.Second,
			Timeout:      10 * time.Second,
			Sleep:        sleeper.sleep,
		},
	}

	for _, mutate := range mutators {
		mutate(config)
	}

	httpClient := internalhttp.NewClient(baseURL, nil)

	return newClient(httpClient, nil, config), sleeper
}

// searchPage builds a search response with the given records and cursor.
func searchPage(after string, records ...hscrm.Record) hscrm.SearchResponse {
	page := hscrm.SearchResponse{Total: len(records), Results: records}
	if page.Results == nil {
		page.Results = []hscrm.Record{}
	}

	if after != "" {
		page.Paging = &hscrm.Paging{Next: &hscrm.PagingNext{After: after}}
	}

	return page
}

func record(id string, properties hscrm.Properties) hscrm.Record {
	return hscrm.Record{ID: id, Properties: properties}
}
