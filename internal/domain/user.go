package domain

import "time"

// UserRole distinguishes the two marketplace sides plus operators.
type UserRole string

const (
	RoleVisitor   UserRole = "VISITOR"
	RoleCollector UserRole = "COLLECTOR"
	RoleAdmin     UserRole = "ADMIN"
)

// UserStatus enumerates account states.
type UserStatus string

const (
	UserStatusActive  UserStatus = "Active"
	UserStatusBlocked UserStatus = "Blocked"
)

// User is an account identified by mobile number.
type User struct {
	ID        int64
	Mobile    string
	Email     *string
	Name      string
	Password  string
	Image     *string
	FCMToken  *string
	Role      UserRole
	Status    UserStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
