package models

// Roles a user can hold. Exactly one user, the first ever registered,
// holds RoleUltimate; everyone after gets RoleUser.
const (
	RoleUltimate = "ultimate"
	RoleUser     = "user"
)

// DefaultTheme is assigned to every new account.
const DefaultTheme = "dark"

// User represents an account in the system. The password is kept verbatim
// in the users collection file, matching the persisted format this server
// inherited; it is never included in API responses.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Theme    string `json:"theme"`
}

// CredentialsRequest is the request structure for signup and login.
// Accepts both JSON and form-encoded bodies.
type CredentialsRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// UserResponse is the response structure for user data (without the password).
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Theme    string `json:"theme"`
}

// ToResponse converts a User to its API representation.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
		Theme:    u.Theme,
	}
}

// IsUltimate reports whether the user holds the privileged role.
func (u *User) IsUltimate() bool {
	return u.Role == RoleUltimate
}
