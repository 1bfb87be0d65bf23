package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	users  map[string]*User
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]*User)}
}

func (r *memoryRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memoryRepo) Create(ctx context.Context, user User) (int64, error) {
	if _, ok := r.users[user.Username]; ok {
		return 0, ErrUsernameTaken
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.Username] = &user
	return user.ID, nil
}

func (r *memoryRepo) Deactivate(ctx context.Context, id int64) error {
	for _, user := range r.users {
		if user.ID == id {
			user.IsActive = false
			return nil
		}
	}
	return ErrNotFound
}

func TestCreateAndAuthenticate(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	user, err := svc.Create(ctx, " dana ", "Dana Moreau", "", "s3cret")
	require.NoError(t, err)
	require.Equal(t, "dana", user.Username)
	require.Equal(t, "cashier", user.Role)
	require.NotEqual(t, "s3cret", user.PasswordHash)

	got, err := svc.Authenticate(ctx, "dana", "s3cret")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "dana", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "s3cret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateDuplicateUsername(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, "dana", "", "", "s3cret")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "dana", "", "", "other")
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestAuthenticateDeactivatedAccount(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	user, err := svc.Create(ctx, "dana", "", "", "s3cret")
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, user.ID))

	_, err = svc.Authenticate(ctx, "dana", "s3cret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
