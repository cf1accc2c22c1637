package models

import "time"

// SignIn is one ledger row per user per calendar day. Rows are append-only;
// the only deletion path is the admin "reset today" operation.
// Date is stored as YYYY-MM-DD text so equality and range scans are
// timezone-stable across MySQL and SQLite.
type SignIn struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_signins_uid_date" json:"user_id"`
	Date        string    `gorm:"size:10;not null;uniqueIndex:idx_signins_uid_date" json:"date"`
	SignedAt    time.Time `gorm:"not null" json:"signed_at"`
	Makeup      bool      `gorm:"not null;default:false" json:"makeup"`
	Points      int       `gorm:"not null;default:0" json:"points"`
	StreakCount int       `gorm:"not null;default:1" json:"streak_count"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// TableName keeps the table name used by earlier deployments of the plugin.
func (SignIn) TableName() string {
	return "jifen_signins"
}
