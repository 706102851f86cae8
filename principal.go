package users

import (
	"github.com/google/uuid"
)

// Principal is the authenticated identity plus role set, derived per
// request. Immutable for the lifetime of one request and never persisted;
// the credential store is the source of truth it is derived from.
type Principal struct {
	id       uuid.UUID
	username string
	email    string
	roles    []string
}

var _ Identity = (*Principal)(nil)

// NewPrincipal builds a Principal from a stored user record and a fresh
// role-name set.
func NewPrincipal(user *User, roles []string) *Principal {
	if user == nil {
		return nil
	}
	return &Principal{
		id:       user.ID,
		username: user.Username,
		email:    user.Email,
		roles:    append([]string(nil), roles...),
	}
}

func (p *Principal) ID() string {
	return p.id.String()
}

// UUID returns the principal identifier as a uuid.
func (p *Principal) UUID() uuid.UUID {
	return p.id
}

func (p *Principal) Username() string {
	return p.username
}

func (p *Principal) Email() string {
	return p.email
}

// Roles returns a copy of the role-name set.
func (p *Principal) Roles() []string {
	return append([]string(nil), p.roles...)
}

// HasRole checks membership of a single role name.
func (p *Principal) HasRole(name string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.roles {
		if r == name {
			return true
		}
	}
	return false
}

// HasAnyRole checks membership of at least one of the given role names.
func (p *Principal) HasAnyRole(names ...string) bool {
	for _, n := range names {
		if p.HasRole(n) {
			return true
		}
	}
	return false
}

// IsAtLeast checks the strongest held role against the minimum required
// level in the predefined hierarchy.
func (p *Principal) IsAtLeast(minRole RoleName) bool {
	if p == nil {
		return false
	}
	for _, r := range p.roles {
		if RoleIsAtLeast(r, minRole) {
			return true
		}
	}
	return false
}
