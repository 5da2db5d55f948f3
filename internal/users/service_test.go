package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	byID    map[int64]*User
	byPhone map[string]*User
	nextID  int64
}

func newMockStore() *mockStore {
	return &mockStore{byID: map[int64]*User{}, byPhone: map[string]*User{}, nextID: 1}
}

func (m *mockStore) Create(_ context.Context, u User) (*User, error) {
	if _, ok := m.byPhone[u.Phone]; ok {
		return nil, ErrDuplicate
	}
	u.ID = m.nextID
	m.nextID++
	stored := u
	m.byID[u.ID] = &stored
	m.byPhone[u.Phone] = &stored
	return &stored, nil
}

func (m *mockStore) Get(_ context.Context, id int64) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockStore) GetByPhone(_ context.Context, phone string) (*User, error) {
	u, ok := m.byPhone[phone]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockStore) List(_ context.Context, _ ListUsersRequest) ([]User, int, error) {
	return nil, 0, nil
}

func (m *mockStore) UpdateProfile(_ context.Context, id int64, req UpdateProfileRequest) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	return u, nil
}

func (m *mockStore) SetBlocked(_ context.Context, id int64, blocked bool) error {
	u, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.Blocked = blocked
	return nil
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewService(newMockStore(), nil, nil)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{
		Name:     "Asha",
		Email:    "asha@example.com",
		Phone:    "9876543210",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, RoleUser, u.Role)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)

	got, err := svc.Authenticate(ctx, LoginRequest{Phone: "9876543210", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc := NewService(newMockStore(), nil, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{
		Name: "Asha", Email: "asha@example.com", Phone: "9876543210", Password: "s3cret-pass",
	})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, LoginRequest{Phone: "9876543210", Password: "wrong"})
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestAuthenticateUnknownPhone(t *testing.T) {
	svc := NewService(newMockStore(), nil, nil)

	_, err := svc.Authenticate(context.Background(), LoginRequest{Phone: "0000000000", Password: "whatever"})
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestAuthenticateBlockedAccount(t *testing.T) {
	store := newMockStore()
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{
		Name: "Asha", Email: "asha@example.com", Phone: "9876543210", Password: "s3cret-pass",
	})
	require.NoError(t, err)
	require.NoError(t, store.SetBlocked(ctx, u.ID, true))

	_, err = svc.Authenticate(ctx, LoginRequest{Phone: "9876543210", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestRegisterDuplicatePhone(t *testing.T) {
	svc := NewService(newMockStore(), nil, nil)
	ctx := context.Background()

	req := RegisterRequest{Name: "Asha", Email: "asha@example.com", Phone: "9876543210", Password: "s3cret-pass"}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, ErrDuplicate)
}
