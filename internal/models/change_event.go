package models

import (
	"time"

	"gorm.io/gorm"
)

type ChangeEvent struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Timestamp        time.Time      `gorm:"not null;index" json:"timestamp"`
	Width            int            `gorm:"not null" json:"width"`
	Height           int            `gorm:"not null" json:"height"`
	BitDepth         int            `gorm:"not null" json:"bit_depth"`
	PixelFormat      string         `gorm:"not null;index" json:"pixel_format"`
	Endian           string         `gorm:"not null" json:"endian"`
	DominantRGB      string         `gorm:"not null" json:"dominant_rgb"` // 6 hex digits
	UnchangedSeconds float64        `gorm:"not null;default:0" json:"unchanged_seconds"`
	Discontinuity    bool           `gorm:"not null;default:false" json:"discontinuity"`
	CreatedAt        time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

type FormatSummary struct {
	PixelFormat string  `json:"pixel_format"`
	EventCount  int     `json:"event_count"`
	Percentage  float64 `json:"percentage,omitempty"`
}

type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"` // "day", "week", "month"
}

type Report struct {
	Period          ReportPeriod    `json:"period"`
	Formats         []FormatSummary `json:"formats"`
	TotalEvents     int             `json:"total_events"`
	Discontinuities int             `json:"discontinuities"`
	GeneratedAt     time.Time       `json:"generated_at"`
}
