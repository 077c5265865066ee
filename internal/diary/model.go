package diary

import "time"

// Entry is one diary note with the weather snapshot taken when it was written.
type Entry struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	Date        Date      `gorm:"type:date;index;not null" json:"date"`
	Text        string    `gorm:"type:text;not null;default:''" json:"text"`
	Weather     string    `gorm:"not null;default:''" json:"weather"`
	Icon        string    `gorm:"not null;default:''" json:"icon"`
	Temperature float64   `gorm:"not null;default:0" json:"temperature"`
	Tags        Tags      `gorm:"not null;default:'{}'" json:"tags"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Entry) TableName() string { return "diaries" }

// DailyWeather is the cached observation for one calendar day. At most one
// row exists per date (unique index, first write wins).
type DailyWeather struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	Date        Date      `gorm:"type:date;not null" json:"date"`
	Weather     string    `gorm:"not null" json:"weather"`
	Icon        string    `gorm:"not null" json:"icon"`
	Temperature float64   `gorm:"not null" json:"temperature"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}
