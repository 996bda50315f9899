package postgres

import (
	"time"
)

/*
 * 'User' contains the blueprint definition of a User. Every user has exactly
 * one Role, which decides what the session of that user is allowed to do.
 */
type User struct {
	ID           string    `gorm:"primaryKey;type:uuid" json:"id"`
	Email        string    `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Username     string    `gorm:"size:50;not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	RoleID       uint      `gorm:"not null" json:"role_id"`
	MemberSince  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"member_since"`

	Role Role `gorm:"foreignKey:RoleID" json:"role"`
}
