package services

import "github.com/terraincognita07/ereceipt/internal/models"

type Role int

const (
	RoleUser Role = iota
	RoleAdmin
)

// Identity is the authenticated actor of a request.
type Identity struct {
	UserID    uint
	Username  string
	FullName  string
	Phone     string
	IsAdmin   bool
	SessionID string
}

func identityFromUser(user models.User, sessionID string) Identity {
	return Identity{
		UserID:    user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		Phone:     user.Phone,
		IsAdmin:   user.IsAdmin,
		SessionID: sessionID,
	}
}

func (identity Identity) Profile() models.UserProfile {
	return models.UserProfile{
		UserID:   identity.UserID,
		Username: identity.Username,
		FullName: identity.FullName,
		Phone:    identity.Phone,
		IsAdmin:  identity.IsAdmin,
	}
}

// Authorize checks identity against role. A nil identity is unauthenticated.
func Authorize(identity *Identity, role Role) error {
	if identity == nil || identity.UserID == 0 {
		return ErrSessionInvalid
	}
	if role == RoleAdmin && !identity.IsAdmin {
		return ErrAdminRequired
	}
	return nil
}
