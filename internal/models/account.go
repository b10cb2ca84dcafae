package models

import "time"

// Role enumerates the account roles.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleStudent Role = "STUDENT"
	RoleDonor   Role = "DONOR"
)

// AccountStatus enumerates the approval lifecycle states. Students are born
// PENDING and move exactly once to ACCEPTED or REJECTED; donors are born
// ACCEPTED. There is no transition out of a terminal state.
type AccountStatus string

const (
	StatusPending  AccountStatus = "PENDING"
	StatusAccepted AccountStatus = "ACCEPTED"
	StatusRejected AccountStatus = "REJECTED"
)

// Account represents a registered user of any role.
type Account struct {
	ID           int64         `db:"id" json:"id"`
	Name         string        `db:"name" json:"name"`
	Email        string        `db:"email" json:"email"`
	PasswordHash string        `db:"password_hash" json:"-"`
	Phone        string        `db:"phone" json:"phone"`
	Role         Role          `db:"role" json:"role"`
	Status       AccountStatus `db:"status" json:"status"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`

	// Profile is attached for student accounts only.
	Profile *Profile `db:"-" json:"profile,omitempty"`
}

// Profile is the student-only extension of an account, created atomically
// with the account at registration.
type Profile struct {
	ID         int64  `db:"id" json:"id"`
	AccountID  int64  `db:"account_id" json:"account_id"`
	RollNo     string `db:"roll_no" json:"roll_no"`
	College    string `db:"college" json:"college"`
	University string `db:"university" json:"university"`
	NationalID string `db:"national_id" json:"national_id"`
}

// InitialStatus returns the status a freshly registered account starts in.
func (r Role) InitialStatus() AccountStatus {
	if r == RoleStudent {
		return StatusPending
	}
	return StatusAccepted
}
