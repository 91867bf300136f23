package models

// User represents an admin-panel account. Public pages require no account.
type User struct {
	BaseModel
	Username     string `gorm:"size:64;uniqueIndex" json:"username"`
	Email        string `gorm:"size:256" json:"email,omitempty"`
	PasswordHash string `gorm:"size:256" json:"-"`
	IsAdmin      bool   `json:"isAdmin"`
}
