package models

// Setting keys.
const (
	SettingSyncIntervalHours = "sync_interval_hours"
)

// Setting is a key/value configuration row.
type Setting struct {
	Key   string `gorm:"column:key;primaryKey" json:"key"`
	Value string `gorm:"column:value" json:"value"`
}

// TableName specifies the table name for GORM
func (Setting) TableName() string {
	return "settings"
}
