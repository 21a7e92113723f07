package models

import "time"

// DatasetInfo describes a dataset stored in the local database
type DatasetInfo struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Columns     []string   `json:"columns"`
	Rows        int        `json:"rows"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"` // Set once the summary was sent to Home Assistant
}
