package approval

import "strings"

// Approval is one stakeholder's sign-off and the contact who owns it.
type Approval struct {
	Approved bool   `json:"approved" yaml:"approved"`
	Contact  string `json:"contact,omitempty" yaml:"contact,omitempty"`
}

// Record holds the sign-off of each role. A missing role is unapproved and
// unassigned.
type Record map[Role]Approval

// Approved reports whether the role has signed off.
func (r Record) Approved(role Role) bool {
	return r[role].Approved
}

// Contact returns the contact assigned to the role, if any.
func (r Record) Contact(role Role) string {
	return r[role].Contact
}

// SetApproved records or revokes the role's sign-off, keeping its contact.
func (r Record) SetApproved(role Role, approved bool) {
	a := r[role]
	a.Approved = approved
	r[role] = a
}

// Assign sets the contact for the role, keeping its sign-off.
func (r Record) Assign(role Role, contact string) {
	a := r[role]
	a.Contact = strings.TrimSpace(contact)
	r[role] = a
}

// RolesFor returns the roles assigned to contact, matched case-insensitively,
// in gate order.
func (r Record) RolesFor(contact string) []Role {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return nil
	}
	var out []Role
	for _, role := range ValidRoles() {
		if strings.EqualFold(r[role].Contact, contact) {
			out = append(out, role)
		}
	}
	return out
}

// Flags returns the record as snapshot fields, one "<role>Approved" entry per
// known role.
func (r Record) Flags() map[string]any {
	out := make(map[string]any, len(ValidRoles()))
	for _, role := range ValidRoles() {
		out[role.Flag()] = r.Approved(role)
	}
	return out
}

// Clone returns a copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
