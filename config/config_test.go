package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectConfigValidate(t *testing.T) {
	t.Run("all settings present", func(t *testing.T) {
		c := ConnectConfig{
			Domain:           "https://connect.example.com",
			Login:            "admin@example.com",
			Password:         "secret",
			MeetingContainer: "canvas_meetings",
		}
		require.NoError(t, c.Validate())
		assert.True(t, c.Enabled())
	})

	t.Run("all settings empty disables the integration", func(t *testing.T) {
		c := ConnectConfig{}
		require.NoError(t, c.Validate())
		assert.False(t, c.Enabled())
	})

	t.Run("partial settings are rejected", func(t *testing.T) {
		c := ConnectConfig{Domain: "https://connect.example.com"}
		assert.Error(t, c.Validate())

		c = ConnectConfig{Login: "admin@example.com", Password: "secret"}
		assert.Error(t, c.Validate())
	})
}

func TestConnectConfigSettings(t *testing.T) {
	c := ConnectConfig{
		Domain:           "https://connect.example.com",
		Login:            "admin@example.com",
		Password:         "secret",
		MeetingContainer: "canvas_meetings",
		UseSISIDs:        "yes",
	}
	s := c.Settings()
	assert.Equal(t, "https://connect.example.com", s.Domain)
	assert.True(t, s.UseSISIDs)

	c.UseSISIDs = "no"
	assert.False(t, c.Settings().UseSISIDs)
}

func TestDatabaseDSN(t *testing.T) {
	c := DatabaseConfig{
		Host: "db", Port: "5432", User: "app", Password: "pw",
		DBName: "bridge", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://app:pw@db:5432/bridge?sslmode=disable", c.DSN())

	c.URL = "postgres://elsewhere/other"
	assert.Equal(t, "postgres://elsewhere/other", c.DSN())
}
