package postgres

// Role priority works inverted: the lower the value, the more privileged
// the role.
type Role struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:50;not null;uniqueIndex" json:"name"`
	Priority int    `gorm:"not null;default:10" json:"priority"`
}
