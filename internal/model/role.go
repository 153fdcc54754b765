package model

// Role enumerates the application roles. Roles form a total order by
// privilege: a higher role implies every capability of the roles below it.
// Route guards compare against a minimum role, except where a route
// explicitly requires an exact match.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// roleLevels maps each known role to its position in the privilege order.
// Unknown roles map to 0 and therefore satisfy no guard.
var roleLevels = map[Role]int{
	RoleUser:  1,
	RoleAdmin: 2,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return roleLevels[r] > 0 }

// AtLeast reports whether r carries at least the privilege of min.
func (r Role) AtLeast(min Role) bool {
	lvl := roleLevels[r]
	return lvl > 0 && lvl >= roleLevels[min]
}

// ParseRole normalizes a raw role string. Unknown values come back as the
// empty Role, which fails Valid().
func ParseRole(s string) Role {
	r := Role(s)
	if r.Valid() {
		return r
	}
	return ""
}
