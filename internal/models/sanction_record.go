package models

import "time"

// SanctionRecord is the durable record of an exiled member. Its presence is
// the authoritative signal that the member is currently exiled.
type SanctionRecord struct {
	ID          string `gorm:"primaryKey;size:32"`
	OldNickname string `gorm:"size:255;not null;default:''"`
	Reason      string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName keeps the table name used by earlier deployments.
func (SanctionRecord) TableName() string {
	return "exiled_users"
}
