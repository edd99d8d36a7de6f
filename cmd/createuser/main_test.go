package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserFlags_IgnoresServerFlags(t *testing.T) {
	f, err := parseUserFlags([]string{"-d", "postgres://x", "-username", "alice", "-email=a@x.io", "-k", "12"})
	require.NoError(t, err)
	assert.Equal(t, "alice", f.userName)
	assert.Equal(t, "a@x.io", f.email)
}

func TestParseUserFlags_Empty(t *testing.T) {
	f, err := parseUserFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, userFlags{}, f)
}
