package model

import "time"

// Role gates every privileged operation.
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleDriver     Role = "driver"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleDriver, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// User represents an account of any role.
type User struct {
	ID                  int64
	Email               string
	DisplayName         string
	PasswordHash        string
	Role                Role
	ManagedRestaurantID string
	CreatedAt           time.Time
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID       int64
	Role         Role
	RestaurantID string
}

// ActorOf builds an actor from a stored user.
func ActorOf(u *User) Actor {
	return Actor{UserID: u.ID, Role: u.Role, RestaurantID: u.ManagedRestaurantID}
}

// IsAdmin reports whether the actor may administer restaurantID.
func (a Actor) IsAdmin(restaurantID string) bool {
	switch a.Role {
	case RoleSuperAdmin:
		return true
	case RoleAdmin:
		return a.RestaurantID != "" && a.RestaurantID == restaurantID
	}
	return false
}

// IsDriverOf reports whether the actor drives for restaurantID.
func (a Actor) IsDriverOf(restaurantID string) bool {
	return a.Role == RoleDriver && a.RestaurantID != "" && a.RestaurantID == restaurantID
}
