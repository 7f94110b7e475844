package connect

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Settings is one Adobe Connect tenant configuration, as stored by the host
// LMS plugin settings (domain, login, password, meeting_container,
// use_sis_ids).
type Settings struct {
	Domain           string
	Login            string
	Password         string
	MeetingContainer string
	UseSISIDs        bool
}

// Params holds request parameters for one Connect API call. Keys use
// snake_case and are converted to the API's dash-separated convention on
// dispatch.
type Params map[string]string

// Client is an authenticated session against one Adobe Connect tenant.
// It is not safe for concurrent mutation; share it through a Cache and
// accept the documented settings race, the way the host LMS does.
type Client struct {
	login    string
	password string
	domain   string

	httpClient *http.Client
	logger     *zap.Logger

	authenticated bool
	sessionKey    string
}

// NewClient creates a client for the given tenant settings. No request is
// made until LogIn or the first Invoke.
func NewClient(settings Settings, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		login:      settings.Login,
		password:   settings.Password,
		domain:     strings.TrimRight(settings.Domain, "/"),
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// LogIn authenticates against the Connect server. Idempotent: once the
// session is authenticated further calls are no-ops.
func (c *Client) LogIn(ctx context.Context) error {
	if c.authenticated {
		return nil
	}
	resp := c.Login(ctx, c.login, c.password)
	if !resp.OK() {
		return &ConnectionError{Domain: c.domain, Login: c.login}
	}
	c.authenticated = true
	return nil
}

// LoggedIn reports whether this session has authenticated.
func (c *Client) LoggedIn() bool {
	return c.authenticated
}

// SessionKey returns the session token for this client, fetching it lazily
// through a session-less common-info call and caching it for the client's
// lifetime.
func (c *Client) SessionKey(ctx context.Context) string {
	if c.sessionKey == "" {
		resp := c.Invoke(ctx, "common_info", nil, false)
		c.sessionKey = resp.Text("//cookie")
	}
	return c.sessionKey
}

// Invoke dispatches one named Connect API action as an HTTP GET. The action
// and parameter keys are dash-cased, values percent-escaped, and the cached
// session token injected when withSession is set. Transport-level failures
// are not propagated: they are logged and downgraded to a synthetic 408
// response with an empty body, so callers only ever check the status node.
//
// Invoke is the narrow escape hatch onto the remote action namespace; use
// the typed methods for every modeled action.
func (c *Client) Invoke(ctx context.Context, action string, params Params, withSession bool) *Response {
	dashed := dashCase(action)

	merged := make(Params, len(params)+1)
	for k, v := range params {
		merged[k] = v
	}
	if withSession {
		merged["session"] = c.SessionKey(ctx)
	}

	reqURL := fmt.Sprintf("%s/api/xml?action=%s%s", c.domain, dashed, formatParams(merged))
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.Error("connect request error", zap.String("action", dashed), zap.Error(err))
		observeRequest(dashed, http.StatusRequestTimeout, time.Since(start))
		return NewResponse(http.StatusRequestTimeout, nil, "")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("connect request error", zap.String("action", dashed), zap.Error(err))
		observeRequest(dashed, http.StatusRequestTimeout, time.Since(start))
		return NewResponse(http.StatusRequestTimeout, nil, "")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("connect request error", zap.String("action", dashed), zap.Error(err))
		observeRequest(dashed, http.StatusRequestTimeout, time.Since(start))
		return NewResponse(http.StatusRequestTimeout, nil, "")
	}

	observeRequest(dashed, resp.StatusCode, time.Since(start))
	return NewResponse(resp.StatusCode, resp.Header, string(body))
}

// Login issues the authentication action. It never carries a session token.
func (c *Client) Login(ctx context.Context, login, password string) *Response {
	return c.Invoke(ctx, "login", Params{"login": login, "password": password}, false)
}

// CommonInfo returns tenant bootstrap info, including the session cookie.
func (c *Client) CommonInfo(ctx context.Context) *Response {
	return c.Invoke(ctx, "common_info", nil, false)
}

// ScoUpdate creates or updates a content object (meetings included).
func (c *Client) ScoUpdate(ctx context.Context, params Params) *Response {
	return c.Invoke(ctx, "sco_update", params, true)
}

// ScoByURL looks up a content object by its URL suffix.
func (c *Client) ScoByURL(ctx context.Context, urlPath string) *Response {
	return c.Invoke(ctx, "sco_by_url", Params{"url_path": urlPath}, true)
}

// ScoContents lists the direct children of a content object.
func (c *Client) ScoContents(ctx context.Context, params Params) *Response {
	return c.Invoke(ctx, "sco_contents", params, true)
}

// ScoExpandedContents lists a content object's tree, filterable by name.
func (c *Client) ScoExpandedContents(ctx context.Context, params Params) *Response {
	return c.Invoke(ctx, "sco_expanded_contents", params, true)
}

// ScoInfo returns metadata for one content object.
func (c *Client) ScoInfo(ctx context.Context, scoID string) *Response {
	return c.Invoke(ctx, "sco_info", Params{"sco_id": scoID}, true)
}

// ScoShortcuts lists the tenant's well-known containers.
func (c *Client) ScoShortcuts(ctx context.Context) *Response {
	return c.Invoke(ctx, "sco_shortcuts", nil, true)
}

// PermissionsUpdate grants the named permission to a principal on an object.
func (c *Client) PermissionsUpdate(ctx context.Context, aclID, principalID, permissionID string) *Response {
	return c.Invoke(ctx, "permissions_update", Params{
		"acl_id":        aclID,
		"principal_id":  principalID,
		"permission_id": permissionID,
	}, true)
}

// PrincipalUpdate creates or updates a remote account.
func (c *Client) PrincipalUpdate(ctx context.Context, params Params) *Response {
	return c.Invoke(ctx, "principal_update", params, true)
}

// PrincipalList searches the remote account directory.
func (c *Client) PrincipalList(ctx context.Context, params Params) *Response {
	return c.Invoke(ctx, "principal_list", params, true)
}

// UserSession authenticates as the given principal credentials and returns
// a fresh session token for join URLs.
func UserSession(ctx context.Context, settings Settings, logger *zap.Logger) (string, error) {
	client := NewClient(settings, logger)
	if err := client.LogIn(ctx); err != nil {
		return "", err
	}
	return client.SessionKey(ctx), nil
}

// dashCase converts a snake_case action or parameter name to the Connect
// API's dash-separated convention.
func dashCase(s string) string {
	return strings.ReplaceAll(s, "_", "-")
}

// formatParams renders params as a query-string tail ("&key=value..."),
// keys dashed and sorted for deterministic URLs, values percent-escaped.
func formatParams(params Params) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteByte('&')
		b.WriteString(dashCase(k))
		b.WriteByte('=')
		b.WriteString(Escape(params[k]))
	}
	return b.String()
}

// Escape percent-escapes a query value, encoding spaces as %20 the way the
// Connect server expects.
func Escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
