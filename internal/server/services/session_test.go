package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/kalahboard/internal/common"
	"github.com/dmitrijs2005/kalahboard/internal/server/auth"
	"github.com/dmitrijs2005/kalahboard/internal/server/metrics"
	"github.com/dmitrijs2005/kalahboard/internal/server/models"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate_Rejections(t *testing.T) {
	f := newAuthFixture(t)
	f.rm.u.put(models.User{UserName: "alice", Email: "a@x.io"})

	valid, err := f.tokens.Issue("alice", time.Hour)
	require.NoError(t, err)

	foreign, err := auth.NewTokenService([]byte("other-secret"), time.Hour).Issue("alice", time.Hour)
	require.NoError(t, err)

	expired, err := f.tokens.Issue("alice", 0)
	require.NoError(t, err)

	ghost, err := f.tokens.Issue("ghost", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"tampered", valid + "x"},
		{"wrong secret", foreign},
		{"zero ttl", expired},
		{"deleted account", ghost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.guard.Authenticate(context.Background(), tt.token)
			require.ErrorIs(t, err, common.ErrUnauthorized)
			assert.Equal(t, "could not validate credentials", err.Error())
		})
	}

	assert.Equal(t, float64(len(tests)),
		testutil.ToFloat64(f.metrics.AuthEvents.WithLabelValues(metrics.EventAuthenticate, metrics.OutcomeFailure)))
}

func TestAuthenticate_ReturnsCurrentProfile(t *testing.T) {
	f := newAuthFixture(t)
	f.rm.u.put(models.User{UserName: "alice", Email: "a@x.io", Avatar: "/uploads/avatars/a.png"})

	token, err := f.tokens.IssueDefault("alice")
	require.NoError(t, err)

	u, err := f.guard.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/avatars/a.png", u.Avatar)
}

func TestAuthenticate_StoreFailureIsInternal(t *testing.T) {
	f := newAuthFixture(t)
	f.rm.u.getErr = errors.New("db down")

	token, err := f.tokens.IssueDefault("alice")
	require.NoError(t, err)

	_, err = f.guard.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, common.ErrInternal)
}
