package connect

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusbridge/connect/internal/models"
)

func testUser() *models.User {
	return &models.User{
		ID:        301,
		FirstName: "Don",
		LastName:  "Draper",
		Email:     "don@example.com",
		UUID:      "aa3df432-56f7-47b2-b2c9-18b37f754d06",
		SISUserID: "sis_301",
	}
}

func TestTaggedLogin(t *testing.T) {
	uuid := "aa3df432-56f7-47b2-b2c9-18b37f754d06"

	t.Run("plain address gets the tag before the at sign", func(t *testing.T) {
		assert.Equal(t, "don+canvas-connect@example.com", taggedLogin("don@example.com", uuid))
	})

	t.Run("existing plus tag keeps its position", func(t *testing.T) {
		assert.Equal(t, "don+canvas-connectwork@example.com", taggedLogin("don+work@example.com", uuid))
	})

	t.Run("long address falls back to a uuid prefix tag", func(t *testing.T) {
		email := "a.fairly.long.mailbox.name@a-long-subdomain.example.com"
		got := taggedLogin(email, uuid)
		assert.LessOrEqual(t, len(got), maxLoginLength)
		assert.True(t, strings.HasPrefix(got, "a.fairly.long.mailbox.name+"))
		assert.True(t, strings.HasSuffix(got, "@a-long-subdomain.example.com"))
		assert.Contains(t, got, uuid[:3])
	})

	t.Run("address at the budget gets an empty tag", func(t *testing.T) {
		email := strings.Repeat("x", 50) + "@ex.com" // 57 chars, room for "+" and 2 tag chars
		got := taggedLogin(email, uuid)
		assert.LessOrEqual(t, len(got), maxLoginLength)
		assert.Contains(t, got, "+")
	})

	t.Run("no at sign returns the input unchanged", func(t *testing.T) {
		assert.Equal(t, "not-an-email", taggedLogin("not-an-email", uuid))
	})
}

func TestPrincipalUsername(t *testing.T) {
	t.Run("default mode derives from email", func(t *testing.T) {
		p := NewPrincipal(testUser(), false)
		login, err := p.Username()
		require.NoError(t, err)
		assert.Equal(t, "don+canvas-connect@example.com", login)

		// Memoized.
		again, err := p.Username()
		require.NoError(t, err)
		assert.Equal(t, login, again)
	})

	t.Run("sis mode uses the sis identifier", func(t *testing.T) {
		p := NewPrincipal(testUser(), true)
		login, err := p.Username()
		require.NoError(t, err)
		assert.Equal(t, "sis_301", login)
	})

	t.Run("sis mode without an identifier is an error", func(t *testing.T) {
		u := testUser()
		u.SISUserID = ""
		p := NewPrincipal(u, true)
		_, err := p.Username()
		require.ErrorIs(t, err, ErrMissingSISID)
	})
}

func TestPrincipalPassword(t *testing.T) {
	p := NewPrincipal(testUser(), false)
	pw := p.Password()

	// First 10 hex chars of SHA-1 of the uuid; stable across calls.
	assert.Len(t, pw, 10)
	assert.Equal(t, pw, p.Password())
	assert.Equal(t, pw, NewPrincipal(testUser(), false).Password())

	other := testUser()
	other.UUID = "different-uuid"
	assert.NotEqual(t, pw, NewPrincipal(other, false).Password())
}

const samplePrincipalList = `<?xml version="1.0" encoding="utf-8"?>
<results>
  <status code="ok"/>
  <principal-list>
    <principal principal-id="88421" account-id="7" type="user">
      <login>don+canvas-connect@example.com</login>
      <name>Don Draper</name>
    </principal>
  </principal-list>
</results>`

const samplePrincipalUpdated = `<?xml version="1.0" encoding="utf-8"?>
<results>
  <status code="ok"/>
  <principal principal-id="88422" account-id="7" type="user" has-children="false">
    <login>don+canvas-connect@example.com</login>
    <name>Don Draper</name>
  </principal>
</results>`

const samplePrincipalListEmpty = `<?xml version="1.0" encoding="utf-8"?>
<results>
  <status code="ok"/>
  <principal-list/>
</results>`

func TestDirectoryFind(t *testing.T) {
	f := newFakeConnect(t, loggedInOK(func(action string, q url.Values) string {
		return samplePrincipalList
	}))
	dir := NewDirectory(NewClient(f.settings(), zap.NewNop()), false, zap.NewNop())

	p, err := dir.Find(context.Background(), testUser())
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "88421", p.ID)

	last := f.requests[len(f.requests)-1].Query()
	assert.Equal(t, "principal-list", last.Get("action"))
	assert.Equal(t, "don+canvas-connect@example.com", last.Get("filter-login"))
}

func TestDirectoryFindAbsent(t *testing.T) {
	f := newFakeConnect(t, loggedInOK(func(action string, q url.Values) string {
		return samplePrincipalListEmpty
	}))
	dir := NewDirectory(NewClient(f.settings(), zap.NewNop()), false, zap.NewNop())

	p, err := dir.Find(context.Background(), testUser())
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestDirectoryFindOrCreate(t *testing.T) {
	f := newFakeConnect(t, loggedInOK(func(action string, q url.Values) string {
		if action == "principal-list" {
			return samplePrincipalListEmpty
		}
		return samplePrincipalUpdated
	}))
	dir := NewDirectory(NewClient(f.settings(), zap.NewNop()), false, zap.NewNop())

	p, err := dir.FindOrCreate(context.Background(), testUser())
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "88422", p.ID)

	last := f.requests[len(f.requests)-1].Query()
	assert.Equal(t, "principal-update", last.Get("action"))
	assert.Equal(t, "Don", last.Get("first-name"))
	assert.Equal(t, "user", last.Get("type"))
	assert.Equal(t, "0", last.Get("has-children"))
	assert.NotEmpty(t, last.Get("password"))
}

func TestDirectorySaveSISOmitsPassword(t *testing.T) {
	f := newFakeConnect(t, loggedInOK(func(action string, q url.Values) string {
		return samplePrincipalUpdated
	}))
	dir := NewDirectory(NewClient(f.settings(), zap.NewNop()), true, zap.NewNop())

	p := NewPrincipal(testUser(), true)
	require.NoError(t, dir.Save(context.Background(), p))

	last := f.requests[len(f.requests)-1].Query()
	assert.Equal(t, "sis_301", last.Get("login"))
	assert.Empty(t, last.Get("password"))
}

func TestDirectorySaveToleratesMissingPrincipalNode(t *testing.T) {
	f := newFakeConnect(t, loggedInOK(func(action string, q url.Values) string {
		return `<results><status code="ok"/></results>`
	}))
	dir := NewDirectory(NewClient(f.settings(), zap.NewNop()), false, zap.NewNop())

	p := NewPrincipal(testUser(), false)
	require.NoError(t, dir.Save(context.Background(), p))
	assert.Empty(t, p.ID)
}
