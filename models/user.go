package models

import "time"

// User mirrors the forum's identity record locally and carries the two
// mutable points counters. The ID is assigned by the external forum, never
// auto-incremented here; rows are upserted lazily from verified JWT claims.
//
// SpentPoints and MakeupCards must only be mutated inside service
// transactions so that 0 <= spent <= total earned always holds.
type User struct {
	ID          uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Username    string    `gorm:"size:64;not null;index" json:"username"`
	IsAdmin     bool      `gorm:"not null;default:false" json:"is_admin"`
	SpentPoints int       `gorm:"not null;default:0" json:"spent_points"`
	MakeupCards int       `gorm:"not null;default:0" json:"makeup_cards"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
