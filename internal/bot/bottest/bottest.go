// Package bottest serves a fake Discord REST API for handler tests. New
// returns a session whose HTTP client sends every REST call to an httptest
// server, which records it. discordgo's endpoint variables are left alone, so
// late calls from timers never race with other tests.
package bottest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Call is one recorded request. Path has no query string.
type Call struct {
	Method string
	Path   string
	Body   []byte
}

// Decode unmarshals the request body into v.
func (c Call) Decode(t testing.TB, v any) {
	t.Helper()
	if err := json.Unmarshal(c.Body, v); err != nil {
		t.Fatalf("%s %s: bad body %s: %v", c.Method, c.Path, c.Body, err)
	}
}

// Message is the shape shared by followups, webhook edits and channel posts.
type Message struct {
	Content    string            `json:"content"`
	Flags      int               `json:"flags"`
	Embeds     []json.RawMessage `json:"embeds"`
	Components json.RawMessage   `json:"components"`
}

// Callback is an interaction response body.
type Callback struct {
	Type int     `json:"type"`
	Data Message `json:"data"`
}

// API is the fake. Fail maps "METHOD /path" to a status code returned
// instead of the default answer.
type API struct {
	Fail map[string]int
	// ChannelID is reported for messages created through webhooks.
	ChannelID string

	mu    sync.Mutex
	calls []Call
	seq   int
}

// New starts the fake and returns a session whose REST calls reach it.
func New(t testing.TB) (*discordgo.Session, *API) {
	t.Helper()
	api := &API{Fail: map[string]int{}, ChannelID: "c1"}
	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)
	target, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	s, err := discordgo.New("Bot test")
	if err != nil {
		t.Fatal(err)
	}
	s.Client = &http.Client{
		Transport: rewrite{target: target, next: srv.Client().Transport},
		Timeout:   5 * time.Second,
	}
	s.State.User = &discordgo.User{ID: "bot"}
	return s, api
}

// Path builds an API path from its segments.
func Path(segments ...string) string {
	return "/api/v" + discordgo.APIVersion + "/" + strings.Join(segments, "/")
}

// rewrite sends requests meant for discord.com to the test server, keeping
// the path.
type rewrite struct {
	target *url.URL
	next   http.RoundTripper
}

func (r rewrite) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = r.target.Scheme
	req.URL.Host = r.target.Host
	req.Host = r.target.Host
	return r.next.RoundTrip(req)
}

func (a *API) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	a.mu.Lock()
	a.calls = append(a.calls, Call{Method: r.Method, Path: r.URL.Path, Body: body})
	code, fail := a.Fail[r.Method+" "+r.URL.Path]
	var created string
	if !fail && r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, Path("webhooks")+"/") {
		a.seq++
		created = fmt.Sprintf(`{"id":"m%d","channel_id":%q}`, a.seq, a.ChannelID)
	}
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case fail:
		w.WriteHeader(code)
		fmt.Fprint(w, `{"message":"refused","code":50007}`)
	case created != "":
		fmt.Fprint(w, created)
	case r.Method == http.MethodDelete, strings.HasSuffix(r.URL.Path, "/callback"):
		w.WriteHeader(http.StatusNoContent)
	case r.URL.Path == Path("users", "@me", "channels"):
		fmt.Fprint(w, `{"id":"dm","type":1}`)
	default:
		fmt.Fprint(w, `{"id":"sent"}`)
	}
}

// Calls returns every recorded request in order.
func (a *API) Calls() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Call(nil), a.calls...)
}

// Reset forgets the recorded requests.
func (a *API) Reset() {
	a.mu.Lock()
	a.calls = nil
	a.mu.Unlock()
}

// Find returns the latest request to method and path.
func (a *API) Find(method, path string) (Call, bool) {
	calls := a.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Method == method && calls[i].Path == path {
			return calls[i], true
		}
	}
	return Call{}, false
}

// Must is Find failing the test when the request was never made.
func (a *API) Must(t testing.TB, method, path string) Call {
	t.Helper()
	c, ok := a.Find(method, path)
	if !ok {
		t.Fatalf("no %s %s in %v", method, path, a.paths())
	}
	return c
}

// WaitFor waits up to two seconds for a request to method and path.
func (a *API) WaitFor(t testing.TB, method, path string) Call {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c, ok := a.Find(method, path); ok {
			return c
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s %s; saw %v", method, path, a.paths())
	return Call{}
}

func (a *API) paths() []string {
	var out []string
	for _, c := range a.Calls() {
		out = append(out, c.Method+" "+c.Path)
	}
	return out
}
