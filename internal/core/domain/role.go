package domain

// Role represents a user role in the portal hierarchy.
// Lower level means more privilege: Organizer outranks Admin outranks User.
type Role int

const (
	RoleOrganizer Role = 1
	RoleAdmin     Role = 2
	RoleUser      Role = 3
)

// Level returns the numeric privilege level of the role
func (r Role) Level() int {
	return int(r)
}

// Label returns the display label of the role
func (r Role) Label() string {
	switch r {
	case RoleOrganizer:
		return "ORGANIZER"
	case RoleAdmin:
		return "ADMIN"
	case RoleUser:
		return "USER"
	default:
		return "USER"
	}
}

// RoleFromLevel maps a persisted numeric level to a Role.
// Unknown or missing levels fall back to RoleUser.
func RoleFromLevel(level int) Role {
	switch level {
	case 1:
		return RoleOrganizer
	case 2:
		return RoleAdmin
	case 3:
		return RoleUser
	default:
		return RoleUser
	}
}

// HasPermission reports whether a role satisfies a required minimum role.
// Not symmetric: Organizer satisfies an Admin requirement, never the reverse.
func HasPermission(actual, required Role) bool {
	return actual.Level() <= required.Level()
}
