package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is the read view over a validated login. Handlers receive it
// after token validation; nothing in it is trusted beyond what the token
// signature covered.
type Session interface {
	GetUserID() string
	GetUserUUID() (uuid.UUID, error)
	GetAudience() []string
	GetIssuer() string
	GetIssuedAt() *time.Time
	GetData() map[string]any
}

var _ Session = &SessionObject{}

// SessionObject carries the decoded token attributes plus a free-form
// Data bag holding the role, email, and username claims.
type SessionObject struct {
	UserID         string         `json:"user_id,omitempty"`
	Audience       []string       `json:"audience,omitempty"`
	Issuer         string         `json:"issuer,omitempty"`
	IssuedAt       *time.Time     `json:"issued_at,omitempty"`
	ExpirationDate *time.Time     `json:"expiration_date,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
}

func (s *SessionObject) GetUserID() string { return s.UserID }

func (s *SessionObject) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.UserID)
}

func (s *SessionObject) GetAudience() []string { return s.Audience }

func (s *SessionObject) GetIssuer() string { return s.Issuer }

func (s *SessionObject) GetIssuedAt() *time.Time { return s.IssuedAt }

func (s *SessionObject) GetData() map[string]any { return s.Data }

// HasRole checks the session's primary role by exact name
func (s *SessionObject) HasRole(role string) bool {
	return string(s.primaryRole()) == role
}

// IsAtLeast checks the session's primary role against the role ladder
func (s *SessionObject) IsAtLeast(minRole UserRole) bool {
	return s.primaryRole().IsAtLeast(minRole)
}

// primaryRole reads the role claim out of the data bag, falling back to
// the default role when the claim is missing or unparseable
func (s *SessionObject) primaryRole() UserRole {
	if s.Data == nil {
		return DefaultRole()
	}

	raw, ok := s.Data["role"].(string)
	if !ok {
		return DefaultRole()
	}

	role, valid := ParseRole(raw)
	if !valid {
		return DefaultRole()
	}

	return role
}

func (s SessionObject) String() string {
	issuedAt := "<nil>"
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC1123)
	}

	return fmt.Sprintf("user=%s aud=%v iss=%s iat=%s data=%v",
		s.UserID, s.Audience, s.Issuer, issuedAt, s.Data)
}

// sessionFromAuthClaims projects validated claims into a SessionObject
func sessionFromAuthClaims(claims AuthClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrUnableToParseData
	}

	data := map[string]any{
		"role": claims.Role(),
	}
	if email := claims.Email(); email != "" {
		data["email"] = email
	}
	if username := claims.Username(); username != "" {
		data["username"] = username
	}

	session := &SessionObject{
		UserID: claims.UserID(),
		Issuer: claims.Subject(),
		Data:   data,
	}

	if jwtClaims, ok := claims.(*JWTClaims); ok {
		session.Audience = append(session.Audience, jwtClaims.RegisteredClaims.Audience...)
		if iss := jwtClaims.RegisteredClaims.Issuer; iss != "" {
			session.Issuer = iss
		}
		if len(jwtClaims.Metadata) > 0 {
			data["metadata"] = jwtClaims.Metadata
		}
	}

	issuedAt := claims.IssuedAt()
	expiresAt := claims.Expires()
	session.IssuedAt = &issuedAt
	session.ExpirationDate = &expiresAt

	return session, nil
}
