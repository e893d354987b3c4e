package storage

import (
	"time"
)

// Link is the sole persisted entity: a short code mapped to a target URL
// plus its click statistics. Code and TargetURL never change after creation;
// only the click fields are mutated, and only through IncrementClick.
type Link struct {
	Code          string     `json:"code" db:"code"`
	TargetURL     string     `json:"targetUrl" db:"target_url"`
	Clicks        int64      `json:"clicks" db:"clicks"`
	LastClickedAt *time.Time `json:"lastClickedAt,omitempty" db:"last_clicked_at"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
}
