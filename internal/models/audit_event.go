package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditEvent struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement"`
	Ts        time.Time      `gorm:"not null;index"`
	EventType string         `gorm:"type:varchar(64);not null;index"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
