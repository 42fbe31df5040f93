package types

// UserResponse is the public shape of a user. The password hash never
// leaves the identity store.
type UserResponse struct {
	ID       uint   `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
