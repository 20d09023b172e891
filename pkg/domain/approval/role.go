// Package approval aggregates stakeholder sign-offs into the greenlight gate.
package approval

import (
	"encoding/json"
	"fmt"
)

// Role is a stakeholder whose sign-off the greenlight gate tracks.
type Role string

const (
	RoleProducer  Role = "producer"
	RoleLegal     Role = "legal"
	RoleFinance   Role = "finance"
	RoleExecutive Role = "executive"
	RoleClient    Role = "client"
)

// ValidRoles returns all valid role values in gate order.
func ValidRoles() []Role {
	return []Role{RoleProducer, RoleLegal, RoleFinance, RoleExecutive, RoleClient}
}

// IsValid checks if the role is a recognized value.
func (r Role) IsValid() bool {
	switch r {
	case RoleProducer, RoleLegal, RoleFinance, RoleExecutive, RoleClient:
		return true
	}
	return false
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Label returns a human-readable label for the role.
func (r Role) Label() string {
	switch r {
	case RoleProducer:
		return "Producer"
	case RoleLegal:
		return "Legal"
	case RoleFinance:
		return "Finance"
	case RoleExecutive:
		return "Executive"
	case RoleClient:
		return "Client"
	default:
		return string(r)
	}
}

// Flag returns the snapshot field that carries the role's sign-off, e.g.
// "legalApproved".
func (r Role) Flag() string {
	return string(r) + "Approved"
}

// ParseRole parses a string into a Role.
func ParseRole(str string) (Role, error) {
	r := Role(str)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid approval role: %s", str)
	}
	return r, nil
}

// ParseRoles parses a list of role names, rejecting unknown and duplicate ones.
func ParseRoles(strs []string) ([]Role, error) {
	out := make([]Role, 0, len(strs))
	seen := make(map[Role]bool, len(strs))
	for _, s := range strs {
		r, err := ParseRole(s)
		if err != nil {
			return nil, err
		}
		if seen[r] {
			return nil, fmt.Errorf("duplicate approval role: %s", s)
		}
		seen[r] = true
		out = append(out, r)
	}
	return out, nil
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (r *Role) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseRole(str)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
