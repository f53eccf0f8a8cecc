package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionFromAuthClaims(t *testing.T) {
	claims := testClaims("employer")
	claims.RegisteredClaims.Issuer = "ojtech"
	claims.RegisteredClaims.Audience = jwt.ClaimStrings{"ojtech-api"}
	claims.UID = "user-1"

	session, err := sessionFromAuthClaims(claims)
	require.NoError(t, err)

	assert.Equal(t, "user-1", session.GetUserID())
	assert.Equal(t, "ojtech", session.GetIssuer())
	assert.Equal(t, []string{"ojtech-api"}, session.GetAudience())
	assert.Equal(t, "employer", session.GetData()["role"])
	assert.Equal(t, "jordan@example.com", session.GetData()["email"])
	assert.Equal(t, "jordan", session.GetData()["username"])
}

func TestSessionFromAuthClaims_Nil(t *testing.T) {
	_, err := sessionFromAuthClaims(nil)
	assert.ErrorIs(t, err, ErrUnableToParseData)
}

func TestSessionRoleHelpers(t *testing.T) {
	session := &SessionObject{
		UserID: "user-1",
		Data:   map[string]any{"role": "employer"},
	}

	assert.True(t, session.HasRole("employer"))
	assert.False(t, session.HasRole("admin"))
	assert.True(t, session.IsAtLeast(RoleStudent))
	assert.False(t, session.IsAtLeast(RoleAdmin))
}

func TestSessionRoleDefaultsWhenMissing(t *testing.T) {
	session := &SessionObject{UserID: "user-1"}

	assert.True(t, session.HasRole(string(DefaultRole())))
	assert.False(t, session.IsAtLeast(RoleEmployer))
}

func TestSessionGetUserUUID(t *testing.T) {
	session := &SessionObject{UserID: "not-a-uuid"}
	_, err := session.GetUserUUID()
	assert.Error(t, err)
}

func TestSessionString(t *testing.T) {
	issued := time.Now()
	session := SessionObject{
		UserID:   "user-1",
		Issuer:   "ojtech",
		IssuedAt: &issued,
	}

	out := session.String()
	assert.Contains(t, out, "user=user-1")
	assert.Contains(t, out, "iss=ojtech")
}
