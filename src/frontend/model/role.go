package model

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// RolePrefix is prepended to role names in token claims.
const RolePrefix = "ROLE_"

// Role is one of the three user profiles known to the backend.
type Role string

const (
	RoleAdministrator Role = "ADMINISTRADOR"
	RoleSeller        Role = "VENDEDOR"
	RoleCustomer      Role = "CLIENTE"
)

var allRoles = []Role{RoleAdministrator, RoleSeller, RoleCustomer}

// Roles lists every recognized role.
func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// ParseRole accepts both the bare and the prefixed form ("VENDEDOR", "ROLE_VENDEDOR").
// Unknown names are an error.
func ParseRole(s string) (Role, error) {
	name := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), RolePrefix)
	for _, r := range allRoles {
		if string(r) == name {
			return r, nil
		}
	}
	return "", errors.Errorf("unrecognized role %q", s)
}

// Claim returns the prefixed form used on the wire.
func (r Role) Claim() string { return RolePrefix + string(r) }

func (r Role) Label() string {
	switch r {
	case RoleAdministrator:
		return "Administrador"
	case RoleSeller:
		return "Vendedor"
	case RoleCustomer:
		return "Cliente"
	}
	return string(r)
}

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// RoleSet is an unordered set of roles.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	s := make(RoleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

// ParseRoleSet parses every entry; a single unknown name fails the whole set.
func ParseRoleSet(names ...string) (RoleSet, error) {
	s := make(RoleSet, len(names))
	for _, n := range names {
		r, err := ParseRole(n)
		if err != nil {
			return nil, err
		}
		s[r] = struct{}{}
	}
	return s, nil
}

func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Intersects reports whether s and other share at least one role.
func (s RoleSet) Intersects(other RoleSet) bool {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for r := range small {
		if large.Has(r) {
			return true
		}
	}
	return false
}

// IsManager is true for administrators and sellers.
func (s RoleSet) IsManager() bool {
	return s.Has(RoleAdministrator) || s.Has(RoleSeller)
}

// Slice returns the roles in a stable order.
func (s RoleSet) Slice() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
