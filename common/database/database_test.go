package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientOptionsFromHostList(t *testing.T) {
	co, err := clientOptions(Options{
		DSN:             "ch1:9000,ch2:9000?secure=false",
		MaxOpenConns:    7,
		ConnMaxLifetime: time.Minute,
		Username:        "default",
		Database:        "jobboard",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ch1:9000", "ch2:9000"}, co.Addr)
	assert.Equal(t, "jobboard", co.Auth.Database)
	assert.Equal(t, 7, co.MaxOpenConns)
	assert.Equal(t, time.Minute, co.ConnMaxLifetime)
}

func TestClientOptionsFromURL(t *testing.T) {
	co, err := clientOptions(Options{DSN: "clickhouse://user:pw@localhost:9000/analytics"})
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost:9000"}, co.Addr)
	assert.Equal(t, "analytics", co.Auth.Database)
	assert.Equal(t, "user", co.Auth.Username)
}

func TestClientOptionsRejectsEmptyDSN(t *testing.T) {
	_, err := clientOptions(Options{})
	assert.Error(t, err)
}
