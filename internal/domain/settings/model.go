package settings

import "time"

// Setting is a key/value row of the shared config store (app_settings).
type Setting struct {
	Key       string `gorm:"primaryKey;type:varchar(100)"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (Setting) TableName() string { return "app_settings" }
