package domain

// AccountStatus represents the lifecycle state of a user account
type AccountStatus string

const (
	StatusUnactivated AccountStatus = "UNACTIVATED"
	StatusActive      AccountStatus = "ACTIVE"
	StatusDisabled    AccountStatus = "DISABLED"
)

// IsActive reports whether the account may pass admission
func (s AccountStatus) IsActive() bool {
	return s == StatusActive
}

// Principal is the identity resolved from a bearer credential.
// The admission pipeline refuses any principal whose status is not Active,
// regardless of role.
type Principal struct {
	UserID    uint
	StudentNo string
	Username  string
	Role      Role
	Status    AccountStatus
}
