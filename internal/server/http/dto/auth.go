package dto

// RegisterRequest describes the sign-up payload.
type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

// LoginRequest describes email/password payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID                  int64  `json:"id"`
	Email               string `json:"email"`
	DisplayName         string `json:"displayName"`
	Role                string `json:"role"`
	ManagedRestaurantID string `json:"managedRestaurantId,omitempty"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UpdateRoleRequest changes a user's role.
type UpdateRoleRequest struct {
	Role         string `json:"role"`
	RestaurantID string `json:"restaurantId"`
}

// ErrorResponse carries a message and optional per-field problems.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
