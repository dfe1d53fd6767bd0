package domain

// Gender as stored by the backend.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// UserRole is the account role enum of the backend. Tokens carry it prefixed
// with ROLE_.
type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"
)

// User is a customer or administrator account.
type User struct {
	ID       int      `json:"id"`
	Email    string   `json:"email"`
	Password string   `json:"password,omitempty"`
	Gender   Gender   `json:"gender,omitempty"`
	Role     UserRole `json:"role,omitempty"`
}
