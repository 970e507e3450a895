package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sonnes/cheftrends/prompt"
	"github.com/sonnes/cheftrends/provider"
	"github.com/sonnes/cheftrends/relay"
	htmlrender "github.com/sonnes/cheftrends/render/html"
)

const (
	testUser     = "chef"
	testPassword = "mise-en-place"
	testSecret   = "session-secret"
)

var testNow = time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)

// lockedBuffer collects log output written from handler goroutines.
type lockedBuffer struct {
	mu sync.Mutex
	sb strings.Builder
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.String()
}

type testEnv struct {
	fake   *provider.Fake
	logs   *lockedBuffer
	server *Server
	ts     *httptest.Server
}

func newTestEnv(t *testing.T, fake *provider.Fake, cfg Config) *testEnv {
	t.Helper()

	creds, err := NewCredentials(testUser, testPassword, bcrypt.MinCost)
	require.NoError(t, err)

	logs := &lockedBuffer{}
	logger := log.New(logs)
	logger.SetLevel(log.DebugLevel)

	if cfg.Now == nil {
		cfg.Now = func() time.Time { return testNow }
	}
	rel := relay.New(fake, relay.Config{Timeout: 5 * time.Second}, logger)
	s := New(cfg, creds, rel, htmlrender.New(), logger)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{fake: fake, logs: logs, server: s, ts: ts}
}

func (e *testEnv) request(t *testing.T, method, path, body string, auth bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.ts.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if auth {
		req.SetBasicAuth(testUser, testPassword)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func textEvents(parts ...string) []provider.Event {
	var evs []provider.Event
	for _, p := range parts {
		evs = append(evs, provider.Event{Kind: provider.EventText, Text: p})
	}
	return evs
}

func TestHealthzNeedsNoAuth(t *testing.T) {
	env := newTestEnv(t, &provider.Fake{}, Config{})

	resp := env.request(t, http.MethodGet, "/healthz", "", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", string(body))
}

func TestUnauthorized(t *testing.T) {
	env := newTestEnv(t, &provider.Fake{Events: textEvents("secret report")}, Config{})

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		pass   string
		auth   bool
	}{
		{name: "app without credentials", method: http.MethodGet, path: "/"},
		{name: "stream without credentials", method: http.MethodPost, path: "/stream"},
		{name: "wrong password", method: http.MethodGet, path: "/", user: testUser, pass: "nope", auth: true},
		{name: "wrong user", method: http.MethodPost, path: "/stream", user: "sous", pass: testPassword, auth: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, env.ts.URL+tt.path, strings.NewReader(`{"focus":"x"}`))
			require.NoError(t, err)
			if tt.auth {
				req.SetBasicAuth(tt.user, tt.pass)
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, `Basic realm="cheftrends"`, resp.Header.Get("WWW-Authenticate"))
			assert.Empty(t, resp.Cookies())

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.NotContains(t, string(body), "secret report")
		})
	}

	assert.Empty(t, env.fake.Prompts(), "provider must not be called without auth")
}

func TestAppPage(t *testing.T) {
	env := newTestEnv(t, &provider.Fake{}, Config{})

	resp := env.request(t, http.MethodGet, "/", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `id="focus"`)
	assert.Contains(t, string(body), "[DONE]")
}

func TestUnknownPath(t *testing.T) {
	env := newTestEnv(t, &provider.Fake{}, Config{})

	resp := env.request(t, http.MethodGet, "/nope", "", true)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStream(t *testing.T) {
	fake := &provider.Fake{Events: []provider.Event{
		{Kind: provider.EventThinking, Text: "hidden reasoning"},
		{Kind: provider.EventTool},
		{Kind: provider.EventText, Text: "Trend A "},
		{Kind: provider.EventText, Text: "is rising"},
		{Kind: provider.EventOther},
	}}
	env := newTestEnv(t, fake, Config{})

	resp := env.request(t, http.MethodPost, "/stream", `{"focus":"brunch desserts"}`, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "no", resp.Header.Get("X-Accel-Buffering"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "data: Trend A \n\ndata: is rising\n\ndata: [DONE]\n\n", string(raw))

	text, err := relay.Read(strings.NewReader(string(raw)), nil)
	require.NoError(t, err)
	assert.Equal(t, "Trend A is rising", text)

	prompts := fake.Prompts()
	require.Len(t, prompts, 1)
	assert.Equal(t, "brunch desserts", prompts[0].Focus)
	assert.Contains(t, prompts[0].User, "brunch desserts")
	assert.Equal(t, testNow, prompts[0].Now)
}

func TestStreamMalformedRequestUsesEmptyFocus(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"not json", "focus=brunch"},
		{"wrong type", `{"focus": 42}`},
		{"empty object", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &provider.Fake{Events: textEvents("ok")}
			env := newTestEnv(t, fake, Config{})

			resp := env.request(t, http.MethodPost, "/stream", tt.body, true)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			text, err := relay.Read(resp.Body, nil)
			require.NoError(t, err)
			assert.Equal(t, "ok", text)

			prompts := fake.Prompts()
			require.Len(t, prompts, 1)
			assert.Empty(t, prompts[0].Focus)
			assert.Contains(t, prompts[0].User, prompt.DefaultFocus)
		})
	}
}

func TestStreamUpstreamError(t *testing.T) {
	fake := &provider.Fake{
		Events: textEvents("Trend A"),
		Err:    errors.New("upstream 529 overloaded: key sk-ant-secret"),
	}
	env := newTestEnv(t, fake, Config{})

	resp := env.request(t, http.MethodPost, "/stream", `{"focus":"brunch"}`, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "data: Trend A\n\ndata: [ERROR]\n\n", string(raw))
	assert.NotContains(t, string(raw), "sk-ant-secret")
	assert.Contains(t, env.logs.String(), "sk-ant-secret")
}

func TestSessionCookie(t *testing.T) {
	var offset atomic.Int64
	clock := func() time.Time { return testNow.Add(time.Duration(offset.Load())) }
	env := newTestEnv(t, &provider.Fake{}, Config{SessionSecret: testSecret, SessionTTL: time.Hour, Now: clock})

	resp := env.request(t, http.MethodGet, "/", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	get := func(c *http.Cookie) int {
		req, err := http.NewRequest(http.MethodGet, env.ts.URL+"/", nil)
		require.NoError(t, err)
		req.AddCookie(c)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	t.Run("valid cookie", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, get(session))
	})

	t.Run("tampered cookie", func(t *testing.T) {
		bad := *session
		bad.Value = session.Value[:len(session.Value)-2] + "xx"
		assert.Equal(t, http.StatusUnauthorized, get(&bad))
	})

	t.Run("expired cookie", func(t *testing.T) {
		offset.Store(int64(2 * time.Hour))
		defer offset.Store(0)
		assert.Equal(t, http.StatusUnauthorized, get(session))
	})
}

func TestSessionsDisabledWithoutSecret(t *testing.T) {
	env := newTestEnv(t, &provider.Fake{}, Config{})

	resp := env.request(t, http.MethodGet, "/", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Cookies())
}

func TestSessionForeignSecret(t *testing.T) {
	env := newTestEnv(t, &provider.Fake{}, Config{SessionSecret: testSecret})
	other := &sessions{secret: []byte("other"), ttl: time.Hour, now: time.Now}

	tok, _, err := other.issue(testUser)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, env.ts.URL+"/", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tok})
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	creds, err := NewCredentials(testUser, testPassword, bcrypt.MinCost)
	require.NoError(t, err)
	s := New(Config{}, creds, relay.New(&provider.Fake{}, relay.Config{}, nil), htmlrender.New(), log.New(io.Discard))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
