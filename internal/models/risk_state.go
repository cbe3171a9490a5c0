package models

import "time"

// RiskStateReasonMaxLen bounds the stored pause reason.
const RiskStateReasonMaxLen = 128

// RiskState is one entry of the append-only governor log. The row with the
// highest ID is the current state.
type RiskState struct {
	ID     uint64    `gorm:"primaryKey;autoIncrement"`
	Ts     time.Time `gorm:"not null;index"`
	Paused bool      `gorm:"not null"`
	Reason *string   `gorm:"type:varchar(128)"`
}

func (RiskState) TableName() string {
	return "risk_state"
}
