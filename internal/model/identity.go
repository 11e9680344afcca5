package model

// Role names match the authorization claims carried in the access token.
type Role string

const (
	RoleTeacher       Role = "Teacher"
	RoleAdministrator Role = "Administrator"
)

// Identity is the authenticated caller, passed explicitly into service
// calls instead of being pulled from ambient request state.
type Identity struct {
	UserID   int64
	FullName string
	Email    string
	Roles    []Role
}

// HasRole reports whether the identity carries the given role claim.
func (i Identity) HasRole(role Role) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Complete reports whether the claims a service call depends on are present.
func (i Identity) Complete() bool {
	return i.UserID != 0 && i.FullName != "" && i.Email != ""
}
