package auth

// Principal is the request-scoped, read-only projection of an identity.
// It is rebuilt from validated claims on every request and never persisted.
type Principal struct {
	id          string
	username    string
	email       string
	authorities []string
}

var _ Identity = (*Principal)(nil)

// NewPrincipal builds a principal from a resolved identity
func NewPrincipal(identity Identity) *Principal {
	if identity == nil {
		return nil
	}

	return &Principal{
		id:          identity.ID(),
		username:    identity.Username(),
		email:       identity.Email(),
		authorities: []string{identity.Role()},
	}
}

// PrincipalFromClaims builds a principal from validated token claims
func PrincipalFromClaims(claims AuthClaims) *Principal {
	if claims == nil {
		return nil
	}

	return &Principal{
		id:          claims.UserID(),
		username:    claims.Username(),
		email:       claims.Email(),
		authorities: []string{claims.Role()},
	}
}

func (p *Principal) ID() string {
	return p.id
}

func (p *Principal) Username() string {
	return p.username
}

func (p *Principal) Email() string {
	return p.email
}

// Role returns the primary authority
func (p *Principal) Role() string {
	if len(p.authorities) == 0 {
		return ""
	}
	return p.authorities[0]
}

// Authorities returns the granted authorities. Never empty for a
// principal built from a stored identity.
func (p *Principal) Authorities() []string {
	out := make([]string, len(p.authorities))
	copy(out, p.authorities)
	return out
}

// HasAuthority checks a single granted authority
func (p *Principal) HasAuthority(role string) bool {
	for _, a := range p.authorities {
		if a == role {
			return true
		}
	}
	return false
}
