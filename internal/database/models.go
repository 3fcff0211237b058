// Package database хранит журнал запусков автоматизации в PostgreSQL через GORM.
package database

import "time"

// RunRecord - одна строка журнала на каждый запрос /simulate-3d.
// Карточные данные и OTP сюда не попадают.
type RunRecord struct {
	ID               uint      `gorm:"primaryKey"`
	SessionID        string    `gorm:"type:varchar(128);index;not null"`
	RunKey           string    `gorm:"type:varchar(128);index"`
	Environment      string    `gorm:"type:varchar(16);not null"`
	Success          bool      `gorm:"not null"`
	ACSSuccess       bool      `gorm:"not null"`
	MerchantFinalize bool      `gorm:"not null"`
	FinalizeMethod   string    `gorm:"type:varchar(32)"`
	ResultCode       int       `gorm:"not null"`
	ErrorType        string    `gorm:"type:varchar(32)"`
	Error            string    `gorm:"type:text"`
	ErrorDetails     string    `gorm:"type:text"`
	FinalURL         string    `gorm:"type:text"`
	HTTPStatus       int
	Attempts         int
	DurationMs       int64
	CreatedAt        time.Time `gorm:"autoCreateTime"`
}

func (RunRecord) TableName() string {
	return "automation_runs"
}
