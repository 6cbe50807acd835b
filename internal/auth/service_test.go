package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/marginboard/marginboard/internal/shared"
)

type mockRepo struct {
	users     map[string]*User
	nextID    int64
	createErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{users: make(map[string]*User)}
}

func (m *mockRepo) FindByUsername(ctx context.Context, username string) (*User, error) {
	user, ok := m.users[username]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *mockRepo) CreateUser(ctx context.Context, user User) (*User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	if _, ok := m.users[user.Username]; ok {
		return nil, shared.ErrUsernameTaken
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.Username] = &user
	copied := user
	return &copied, nil
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := newMockRepo()
	service := NewService(repo)

	user, err := service.Register(context.Background(), "alice", "s3cret-pass", "Ally")

	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "Ally", user.Nickname)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))
}

func TestRegisterDefaultsNicknameToUsername(t *testing.T) {
	service := NewService(newMockRepo())

	user, err := service.Register(context.Background(), "bob", "s3cret-pass", "  ")

	require.NoError(t, err)
	assert.Equal(t, "bob", user.Nickname)
}

func TestRegisterRejectsDuplicateWithoutMutation(t *testing.T) {
	repo := newMockRepo()
	service := NewService(repo)
	ctx := context.Background()

	original, err := service.Register(ctx, "alice", "first-pass", "Ally")
	require.NoError(t, err)

	_, err = service.Register(ctx, "alice", "other-pass", "Impostor")
	assert.ErrorIs(t, err, shared.ErrUsernameTaken)

	stored := repo.users["alice"]
	require.NotNil(t, stored)
	assert.Equal(t, original.PasswordHash, stored.PasswordHash)
	assert.Equal(t, "Ally", stored.Nickname)
}

func TestAuthenticate(t *testing.T) {
	repo := newMockRepo()
	service := NewService(repo)
	ctx := context.Background()
	_, err := service.Register(ctx, "alice", "correct-pass", "Ally")
	require.NoError(t, err)

	user, err := service.Authenticate(ctx, "alice", "correct-pass")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = service.Authenticate(ctx, "alice", "wrong-pass")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = service.Authenticate(ctx, "nobody", "correct-pass")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
