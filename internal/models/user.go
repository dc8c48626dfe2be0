package models

import "time"

type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Username         string     `gorm:"size:20;uniqueIndex;not null" json:"username"`
	FullName         string     `gorm:"size:100;not null" json:"full_name"`
	Phone            string     `gorm:"size:20;not null" json:"phone"`
	PasswordHash     string     `gorm:"not null" json:"-"`
	SecretQuestion   string     `gorm:"size:255;not null" json:"-"`
	SecretAnswerHash string     `gorm:"not null" json:"-"`
	IsAdmin          bool       `gorm:"not null" json:"is_admin"`
	Status           UserStatus `gorm:"size:16;not null;index" json:"status"`
	CreatedAt        time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	ApprovedAt       *time.Time `json:"approved_at"`
	ApprovedBy       *uint      `json:"approved_by"`

	Approver *User `gorm:"foreignKey:ApprovedBy;constraint:OnDelete:SET NULL" json:"-"`
}

// UserView is a user row joined with the username of the admin who processed it.
type UserView struct {
	ID                 uint       `json:"id"`
	Username           string     `json:"username"`
	FullName           string     `json:"full_name"`
	Phone              string     `json:"phone"`
	IsAdmin            bool       `json:"is_admin"`
	Status             UserStatus `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	ApprovedAt         *time.Time `json:"approved_at"`
	ApprovedBy         *uint      `json:"approved_by"`
	ApprovedByUsername *string    `json:"approved_by_username"`
}

type UserProfile struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	IsAdmin  bool   `json:"is_admin"`
}

func (user User) Profile() UserProfile {
	return UserProfile{
		UserID:   user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Phone:    user.Phone,
		IsAdmin:  user.IsAdmin,
	}
}
