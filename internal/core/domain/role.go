package domain

import "fmt"

// Role is the closed set of authorization tiers. Admin outranks employee;
// every role comparison in the system goes through AtLeast so the ordering
// is defined in exactly one place.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

var roleRank = map[Role]int{
	RoleEmployee: 1,
	RoleAdmin:    2,
}

// ParseRole converts an external string into a Role, rejecting anything
// outside the closed set.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants at least the privileges of required.
func (r Role) AtLeast(required Role) bool {
	return roleRank[r] >= roleRank[required]
}

func (r Role) String() string {
	return string(r)
}
