package model

import "time"

// User mirrors the identity record of the auth provider. Rows are upserted
// by the auth sync endpoint on first sign-in.
type User struct {
	ID        string    `gorm:"type:varchar(128);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) TableName() string {
	return "users"
}
