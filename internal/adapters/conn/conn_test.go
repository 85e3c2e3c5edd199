package conn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerkz/dxmcp/internal/domain"
)

type fakeStore struct {
	auths []domain.OrgAuthorization
	err   error
}

func (s *fakeStore) ListAllAuthorizations(_ context.Context) ([]domain.OrgAuthorization, error) {
	return s.auths, s.err
}

func TestCreateReturnsConnection(t *testing.T) {
	store := &fakeStore{auths: []domain.OrgAuthorization{
		{Username: "dev@example.com", InstanceURL: "https://dev.my.host"},
		{Username: "hub@example.com", InstanceURL: "https://hub.my.host"},
	}}
	provider := NewProvider(store)

	c, err := provider.Create(context.Background(), "hub@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.OrgUsername("hub@example.com"), c.Username())
	assert.Equal(t, "https://hub.my.host", c.InstanceURL())
}

func TestCreateUnknownUsername(t *testing.T) {
	provider := NewProvider(&fakeStore{})

	_, err := provider.Create(context.Background(), "missing@example.com")
	require.ErrorIs(t, err, domain.ErrOrgNotFound)
}

func TestCreateRefusesExpired(t *testing.T) {
	store := &fakeStore{auths: []domain.OrgAuthorization{
		{Username: "old@example.com", ExpirationDate: time.Now().Add(-24 * time.Hour)},
	}}
	provider := NewProvider(store)

	_, err := provider.Create(context.Background(), "old@example.com")
	require.ErrorIs(t, err, domain.ErrOrgExpired)
}

func TestCreateStoreFailure(t *testing.T) {
	provider := NewProvider(&fakeStore{err: errors.New("disk gone")})

	_, err := provider.Create(context.Background(), "dev@example.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrOrgNotFound)
}

func TestCreateCancelledContext(t *testing.T) {
	provider := NewProvider(&fakeStore{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := provider.Create(ctx, "dev@example.com")
	require.ErrorIs(t, err, context.Canceled)
}
