package models

import "time"

// UpcomingAlert drives the short-lived banner announcement. Alerts are always
// fetched fresh; they are exempt from the content caching policy.
type UpcomingAlert struct {
	BaseModel
	Title     string     `gorm:"size:256" json:"title"`
	Date      *time.Time `json:"date,omitempty"`
	Location  string     `gorm:"size:256" json:"location,omitempty"`
	Link      string     `gorm:"size:512" json:"link,omitempty"`
	Prizepool string     `gorm:"size:128" json:"prizepool,omitempty"`
}
