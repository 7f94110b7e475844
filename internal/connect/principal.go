package connect

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/campusbridge/connect/internal/models"
)

const (
	// maxLoginLength bounds a derived Connect login.
	maxLoginLength = 60
	// loginTag is the uniqueness tag injected into email-derived logins.
	loginTag = "canvas-connect"
)

// Principal mirrors one local LMS user as an Adobe Connect account. The
// derived login and password are deterministic functions of the user's
// identity fields, so repeated lookups are idempotent. The remote principal
// id is cached on the wrapper only, never persisted.
type Principal struct {
	User *models.User
	ID   string

	useSIS   bool
	username string
	password string
}

// NewPrincipal wraps a local user for the given addressing mode.
func NewPrincipal(user *models.User, useSIS bool) *Principal {
	return &Principal{User: user, useSIS: useSIS}
}

// Username returns the derived Connect login, computed once per instance.
// In SIS mode the login is the user's SIS identifier and its absence is an
// error; in default mode it is the email address with a uniqueness tag.
func (p *Principal) Username() (string, error) {
	if p.username != "" {
		return p.username, nil
	}
	if p.useSIS {
		if p.User.SISUserID == "" {
			return "", fmt.Errorf("user %d: %w", p.User.ID, ErrMissingSISID)
		}
		p.username = p.User.SISUserID
		return p.username, nil
	}
	p.username = taggedLogin(p.User.Email, p.User.UUID)
	return p.username, nil
}

// Password returns the derived Connect password: the first 10 hex
// characters of the SHA-1 digest of the user's UUID. SIS mode never
// transmits it.
func (p *Principal) Password() string {
	if p.password == "" {
		sum := sha1.Sum([]byte(p.User.UUID))
		p.password = hex.EncodeToString(sum[:])[:10]
	}
	return p.password
}

// taggedLogin inserts a uniqueness tag into an email address while keeping
// the result within the login length budget. Addresses that already carry a
// "+" get the tag appended after it; otherwise "+tag" goes before the "@".
// When the literal tag would blow the budget, the tag becomes a prefix of
// the user's UUID sized to whatever budget remains.
func taggedLogin(email, userUUID string) string {
	avail := maxLoginLength - len(email)
	if !strings.Contains(email, "+") {
		// One extra character for the inserted "+".
		avail--
	}

	tag := loginTag
	if len(tag) > avail {
		if avail < 0 {
			avail = 0
		}
		if avail > len(userUUID) {
			avail = len(userUUID)
		}
		tag = userUUID[:avail]
	}

	if i := strings.Index(email, "+"); i >= 0 {
		return email[:i+1] + tag + email[i+1:]
	}
	if j := strings.Index(email, "@"); j >= 0 {
		return email[:j] + "+" + tag + email[j:]
	}
	return email
}

// Directory finds or creates Connect principals for local users.
type Directory struct {
	client *Client
	useSIS bool
	logger *zap.Logger
}

// NewDirectory creates a principal directory over the given session client.
func NewDirectory(client *Client, useSIS bool, logger *zap.Logger) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{client: client, useSIS: useSIS, logger: logger}
}

// Find looks up the principal for a local user by derived login. A missing
// account is (nil, nil), not an error.
func (d *Directory) Find(ctx context.Context, user *models.User) (*Principal, error) {
	p := NewPrincipal(user, d.useSIS)
	login, err := p.Username()
	if err != nil {
		return nil, err
	}

	resp := d.client.PrincipalList(ctx, Params{"filter_login": login})
	found := resp.Find("//principal")
	if found == nil {
		return nil, nil
	}
	p.ID = found.SelectAttrValue("principal-id", "")
	return p, nil
}

// Create provisions a remote account for the local user and returns the
// wrapper with its principal id populated.
func (d *Directory) Create(ctx context.Context, user *models.User) (*Principal, error) {
	p := NewPrincipal(user, d.useSIS)
	if err := d.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// FindOrCreate returns the existing principal or creates one.
func (d *Directory) FindOrCreate(ctx context.Context, user *models.User) (*Principal, error) {
	p, err := d.Find(ctx, user)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}
	return d.Create(ctx, user)
}

// Save issues a principal-update for the wrapper. A reply without a
// principal node is logged and left to surface as a missing id on next use;
// only a failed login derivation is an error.
func (d *Directory) Save(ctx context.Context, p *Principal) error {
	login, err := p.Username()
	if err != nil {
		return err
	}

	params := Params{
		"first_name":   p.User.FirstName,
		"last_name":    p.User.LastName,
		"login":        login,
		"type":         "user",
		"has_children": "0",
		"email":        p.User.Email,
	}
	if !d.useSIS {
		params["password"] = p.Password()
	}

	resp := d.client.PrincipalUpdate(ctx, params)
	if el := resp.Find("//principal"); el != nil {
		p.ID = el.SelectAttrValue("principal-id", "")
	} else {
		d.logger.Warn("principal update returned no principal",
			zap.String("login", login),
			zap.String("user_id", strconv.FormatInt(p.User.ID, 10)))
	}
	return nil
}
