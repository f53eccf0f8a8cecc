package auth

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func activeUser(email, username string) *User {
	return &User{
		ID:       uuid.New(),
		Role:     RoleStudent,
		Username: username,
		Email:    email,
		Status:   UserStatusActive,
	}
}

func TestResolveIdentity_EmailTakesPrecedence(t *testing.T) {
	store := new(MockIdentityStore)
	resolver := NewIdentityResolver(store)

	// "shared" matches user A by email and would match a different user B
	// by username: the email match must win
	a := activeUser("shared", "user-a")
	a.PasswordHash = "x"

	store.On("FindByEmail", mock.Anything, "shared").Return(a, nil)

	identity, err := resolver.ResolveIdentity(context.Background(), "shared")
	require.NoError(t, err)

	assert.Equal(t, a.ID.String(), identity.ID())
	store.AssertNotCalled(t, "FindByUsername", mock.Anything, mock.Anything)
}

func TestResolveIdentity_FallsBackToUsername(t *testing.T) {
	store := new(MockIdentityStore)
	resolver := NewIdentityResolver(store)

	user := activeUser("jordan@example.com", "jordan")
	user.PasswordHash = "x"

	store.On("FindByEmail", mock.Anything, "jordan").Return(nil, ErrIdentityNotFound)
	store.On("FindByUsername", mock.Anything, "jordan").Return(user, nil)

	identity, err := resolver.ResolveIdentity(context.Background(), "jordan")
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), identity.ID())
}

func TestResolveIdentity_UniformNotFound(t *testing.T) {
	store := new(MockIdentityStore)
	resolver := NewIdentityResolver(store)

	store.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, ErrIdentityNotFound)
	store.On("FindByUsername", mock.Anything, mock.Anything).Return(nil, ErrIdentityNotFound)

	_, errEmail := resolver.ResolveIdentity(context.Background(), "ghost@example.com")
	_, errUsername := resolver.ResolveIdentity(context.Background(), "ghost")

	require.Error(t, errEmail)
	require.Error(t, errUsername)

	// callers cannot tell which lookup path was tried
	assert.Equal(t, errEmail.Error(), errUsername.Error())
	assert.ErrorIs(t, errEmail, ErrIdentityNotFound)
	assert.ErrorIs(t, errUsername, ErrIdentityNotFound)

	// the identifier rides along as metadata for server-side logging
	var richErr *errors.Error
	require.True(t, errors.As(errEmail, &richErr))
	assert.Equal(t, "ghost@example.com", richErr.Metadata["identifier"])
}

func TestResolveIdentity_SuspendedUserRejected(t *testing.T) {
	store := new(MockIdentityStore)
	resolver := NewIdentityResolver(store)

	user := activeUser("jordan@example.com", "jordan")
	user.PasswordHash = "x"
	user.Status = UserStatusSuspended

	store.On("FindByEmail", mock.Anything, "jordan@example.com").Return(user, nil)

	_, err := resolver.ResolveIdentity(context.Background(), "jordan@example.com")
	assert.ErrorIs(t, err, ErrUserSuspended)
}

func TestVerifyIdentity_Success(t *testing.T) {
	store := new(MockTrackingStore)
	resolver := NewIdentityResolver(store)

	hash, err := HashPassword("sup3r-secret-pass")
	require.NoError(t, err)

	user := activeUser("jordan@example.com", "jordan")
	user.PasswordHash = hash

	store.On("FindByEmail", mock.Anything, "jordan@example.com").Return(user, nil)
	store.On("TrackSuccessfulLogin", mock.Anything, user).Return(nil)

	identity, err := resolver.VerifyIdentity(context.Background(), "jordan@example.com", "sup3r-secret-pass")
	require.NoError(t, err)

	assert.Equal(t, user.ID.String(), identity.ID())
	store.AssertExpectations(t)
}

func TestVerifyIdentity_WrongPasswordTracksAttempt(t *testing.T) {
	store := new(MockTrackingStore)
	resolver := NewIdentityResolver(store)

	hash, err := HashPassword("sup3r-secret-pass")
	require.NoError(t, err)

	user := activeUser("jordan@example.com", "jordan")
	user.PasswordHash = hash

	store.On("FindByEmail", mock.Anything, "jordan@example.com").Return(user, nil)
	store.On("TrackAttemptedLogin", mock.Anything, user).Return(nil)

	_, err = resolver.VerifyIdentity(context.Background(), "jordan@example.com", "wrong")
	assert.ErrorIs(t, err, ErrMismatchedHashAndPassword)
	store.AssertExpectations(t)
}

func TestVerifyIdentity_UnknownIdentifierLooksLikeBadPassword(t *testing.T) {
	store := new(MockIdentityStore)
	resolver := NewIdentityResolver(store)

	store.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, ErrIdentityNotFound)
	store.On("FindByUsername", mock.Anything, mock.Anything).Return(nil, ErrIdentityNotFound)

	_, err := resolver.VerifyIdentity(context.Background(), "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, ErrMismatchedHashAndPassword)
}

func TestVerifyIdentity_TooManyAttempts(t *testing.T) {
	store := new(MockIdentityStore)
	resolver := NewIdentityResolver(store)

	user := activeUser("jordan@example.com", "jordan")
	user.PasswordHash = "x"
	user.LoginAttempts = MaxLoginAttempts + 1
	now := time.Now()
	user.LoginAttemptAt = &now

	store.On("FindByEmail", mock.Anything, "jordan@example.com").Return(user, nil)

	_, err := resolver.VerifyIdentity(context.Background(), "jordan@example.com", "whatever")
	assert.ErrorIs(t, err, ErrTooManyLoginAttempts)
}

func TestFindIdentityByIdentifier_IDThenResolution(t *testing.T) {
	store := new(MockIdentityStore)
	resolver := NewIdentityResolver(store)

	user := activeUser("jordan@example.com", "jordan")
	user.PasswordHash = "x"

	store.On("FindByID", mock.Anything, user.ID.String()).Return(user, nil)

	identity, err := resolver.FindIdentityByIdentifier(context.Background(), user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, user.Email, identity.Email())
	store.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}
