package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory TokenStore for tests
type fakeStore struct {
	tokens    map[string]*TokenRecord
	failWith  error
	validated []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{tokens: make(map[string]*TokenRecord)}
}

func (s *fakeStore) ValidateToken(_ context.Context, plain string) (*TokenRecord, error) {
	s.validated = append(s.validated, plain)
	if s.failWith != nil {
		return nil, s.failWith
	}
	return s.tokens[plain], nil
}

func (s *fakeStore) RegisterWorker(_ context.Context, tokenID, systemID string, reg Registration) (*WorkerRecord, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	return &WorkerRecord{SystemID: systemID, WorkerID: reg.WorkerID, Hostname: reg.Hostname}, nil
}

func (s *fakeStore) DisconnectWorker(_ context.Context, systemID string) error {
	return s.failWith
}

func TestStoreBackedAuthSuccess(t *testing.T) {
	store := newFakeStore()
	store.tokens["wk-token"] = &TokenRecord{TokenID: "tok-1", SystemID: "sys-1"}

	a := NewAuthenticator(store, "")
	res := a.AuthenticateWorker(context.Background(), "wk-token", false)

	require.True(t, res.OK)
	assert.Equal(t, MethodTokenStore, res.Method)
	assert.Equal(t, "tok-1", res.TokenID)
	assert.Equal(t, "sys-1", res.SystemID)
}

func TestStoreMissFallsBackToStatic(t *testing.T) {
	store := newFakeStore()

	a := NewAuthenticator(store, "shared-secret")
	res := a.AuthenticateWorker(context.Background(), "shared-secret", false)

	require.True(t, res.OK)
	assert.Equal(t, MethodStatic, res.Method)
	assert.Empty(t, res.TokenID)
}

func TestStoreErrorDegradesNotFatal(t *testing.T) {
	store := newFakeStore()
	store.failWith = errors.New("store unreachable")

	a := NewAuthenticator(store, "shared-secret")

	res := a.AuthenticateWorker(context.Background(), "shared-secret", false)
	require.True(t, res.OK)
	assert.Equal(t, MethodStatic, res.Method)

	res = a.AuthenticateWorker(context.Background(), "wrong", false)
	assert.False(t, res.OK)
}

func TestRemoteRejectedWithoutAnyToken(t *testing.T) {
	a := NewAuthenticator(nil, "")
	res := a.AuthenticateWorker(context.Background(), "anything", false)

	require.False(t, res.OK)
	assert.NotEmpty(t, res.Reason)
}

func TestRemoteRejectedOnMismatch(t *testing.T) {
	a := NewAuthenticator(nil, "shared-secret")
	res := a.AuthenticateWorker(context.Background(), "wrong", false)

	assert.False(t, res.OK)
}

func TestLocalOpenAccessWithoutConfiguredToken(t *testing.T) {
	a := NewAuthenticator(nil, "")
	res := a.AuthenticateWorker(context.Background(), "", true)

	require.True(t, res.OK)
	assert.Equal(t, MethodOpen, res.Method)
}

func TestLocalRejectedWhenConfiguredTokenMismatches(t *testing.T) {
	a := NewAuthenticator(nil, "shared-secret")

	res := a.AuthenticateWorker(context.Background(), "wrong", true)
	assert.False(t, res.OK)

	res = a.AuthenticateWorker(context.Background(), "shared-secret", true)
	require.True(t, res.OK)
	assert.Equal(t, MethodStatic, res.Method)
}

func TestRequiresAuth(t *testing.T) {
	open := NewAuthenticator(nil, "")
	assert.False(t, open.RequiresAuth(true))
	assert.True(t, open.RequiresAuth(false))

	locked := NewAuthenticator(nil, "shared-secret")
	assert.True(t, locked.RequiresAuth(true))
	assert.True(t, locked.RequiresAuth(false))
}

func TestIsLocalAddr(t *testing.T) {
	tests := []struct {
		addr  string
		local bool
	}{
		{"", true},
		{"127.0.0.1:52110", true},
		{"127.0.0.2:80", true},
		{"[::1]:9000", true},
		{"localhost:8937", true},
		{"10.0.0.4:52110", false},
		{"192.168.1.7:443", false},
		{"example.com:80", false},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.local, IsLocalAddr(tt.addr))
		})
	}
}
