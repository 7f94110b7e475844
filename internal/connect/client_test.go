package connect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleCommonInfo = `<?xml version="1.0" encoding="utf-8"?>
<results>
  <status code="ok"/>
  <common locale="en" time-zone-id="85">
    <cookie>na8breezsession123</cookie>
  </common>
</results>`

// fakeConnect runs an httptest server answering /api/xml requests through
// the given per-action responder and records every request URL.
type fakeConnect struct {
	*httptest.Server
	requests []*url.URL
	respond  func(action string, q url.Values) string
}

func newFakeConnect(t *testing.T, respond func(action string, q url.Values) string) *fakeConnect {
	t.Helper()
	f := &fakeConnect{respond: respond}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.URL)
		q := r.URL.Query()
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(f.respond(q.Get("action"), q)))
	}))
	t.Cleanup(f.Server.Close)
	return f
}

func (f *fakeConnect) settings() Settings {
	return Settings{
		Domain:           f.URL,
		Login:            "admin@example.com",
		Password:         "secret",
		MeetingContainer: "canvas_meetings",
	}
}

// loggedInOK answers login and common-info successfully and delegates the
// rest, so tests only script the actions they care about.
func loggedInOK(next func(action string, q url.Values) string) func(action string, q url.Values) string {
	return func(action string, q url.Values) string {
		switch action {
		case "login":
			return sampleLoginOK
		case "common-info":
			return sampleCommonInfo
		default:
			return next(action, q)
		}
	}
}

func TestInvokeBuildsDashCasedSortedURL(t *testing.T) {
	f := newFakeConnect(t, func(action string, q url.Values) string { return sampleLoginOK })
	client := NewClient(f.settings(), zap.NewNop())

	resp := client.Invoke(context.Background(), "sco_expanded_contents", Params{
		"sco_id":      "12345",
		"filter_name": "canvas_meetings",
	}, false)

	require.True(t, resp.OK())
	require.Len(t, f.requests, 1)
	assert.Equal(t, "/api/xml", f.requests[0].Path)
	assert.Equal(t,
		"action=sco-expanded-contents&filter-name=canvas_meetings&sco-id=12345",
		f.requests[0].RawQuery)
}

func TestInvokeEscapesValues(t *testing.T) {
	f := newFakeConnect(t, func(action string, q url.Values) string { return sampleLoginOK })
	client := NewClient(f.settings(), zap.NewNop())

	client.Invoke(context.Background(), "sco_update", Params{
		"name": "Biology 101: Midterm Review [7]",
	}, false)

	require.Len(t, f.requests, 1)
	assert.Contains(t, f.requests[0].RawQuery, "name=Biology%20101%3A%20Midterm%20Review%20%5B7%5D")
}

func TestInvokeInjectsSession(t *testing.T) {
	f := newFakeConnect(t, loggedInOK(func(action string, q url.Values) string {
		return sampleScoInfo
	}))
	client := NewClient(f.settings(), zap.NewNop())

	resp := client.ScoInfo(context.Background(), "2006258745")
	require.True(t, resp.OK())

	// First request fetches the session cookie, second carries it.
	require.Len(t, f.requests, 2)
	assert.Equal(t, "common-info", f.requests[0].Query().Get("action"))
	assert.Empty(t, f.requests[0].Query().Get("session"))
	assert.Equal(t, "na8breezsession123", f.requests[1].Query().Get("session"))
}

func TestSessionKeyCached(t *testing.T) {
	f := newFakeConnect(t, loggedInOK(func(action string, q url.Values) string {
		return sampleScoInfo
	}))
	client := NewClient(f.settings(), zap.NewNop())

	ctx := context.Background()
	assert.Equal(t, "na8breezsession123", client.SessionKey(ctx))
	assert.Equal(t, "na8breezsession123", client.SessionKey(ctx))
	assert.Len(t, f.requests, 1)
}

func TestLogIn(t *testing.T) {
	logins := 0
	f := newFakeConnect(t, func(action string, q url.Values) string {
		logins++
		return sampleLoginOK
	})
	client := NewClient(f.settings(), zap.NewNop())

	ctx := context.Background()
	require.False(t, client.LoggedIn())
	require.NoError(t, client.LogIn(ctx))
	assert.True(t, client.LoggedIn())

	// Idempotent: no second login request.
	require.NoError(t, client.LogIn(ctx))
	assert.Equal(t, 1, logins)

	q := f.requests[0].Query()
	assert.Equal(t, "login", q.Get("action"))
	assert.Equal(t, "admin@example.com", q.Get("login"))
	assert.Equal(t, "secret", q.Get("password"))
}

func TestLogInFailure(t *testing.T) {
	f := newFakeConnect(t, func(action string, q url.Values) string {
		return `<results><status code="no-login"/></results>`
	})
	client := NewClient(f.settings(), zap.NewNop())

	err := client.LogIn(context.Background())
	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "admin@example.com", connErr.Login)
	assert.False(t, client.LoggedIn())
}

func TestInvokeTransportFailure(t *testing.T) {
	f := newFakeConnect(t, func(action string, q url.Values) string { return sampleLoginOK })
	settings := f.settings()
	f.Close()

	client := NewClient(settings, zap.NewNop())
	resp := client.Invoke(context.Background(), "sco_shortcuts", nil, false)

	require.NotNil(t, resp)
	assert.Equal(t, http.StatusRequestTimeout, resp.StatusCode)
	assert.Empty(t, resp.Body)
	assert.False(t, resp.OK())
}

func TestUserSession(t *testing.T) {
	f := newFakeConnect(t, loggedInOK(nil))

	token, err := UserSession(context.Background(), f.settings(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "na8breezsession123", token)
}

func TestUserSessionBadCredentials(t *testing.T) {
	f := newFakeConnect(t, func(action string, q url.Values) string {
		return `<results><status code="no-login"/></results>`
	})

	_, err := UserSession(context.Background(), f.settings(), zap.NewNop())
	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "Jane%20Doe", Escape("Jane Doe"))
	assert.Equal(t, "a%2Bb%40c", Escape("a+b@c"))
	assert.Equal(t, "plain", Escape("plain"))
}

func TestDashCase(t *testing.T) {
	assert.Equal(t, "sco-by-url", dashCase("sco_by_url"))
	assert.Equal(t, "login", dashCase("login"))
}
