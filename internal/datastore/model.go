// model.go this code defines the data model for the application
package datastore

import "time"

// Video statuses. A record is created as processing and transitions to
// completed once its analysis has been stored. The transition is one-way.
const (
	VideoStatusProcessing = "processing"
	VideoStatusCompleted  = "completed"
)

// Video represents a stored reference to an uploaded video clip and its
// processing status.
type Video struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	UserID      string `gorm:"index:idx_videos_user"`
	Title       string
	ClipPath    string // path of the clip in the object store
	ContentType string
	Size        int64
	Status      string    `gorm:"index:idx_videos_status;type:varchar(20)"`
	CreatedAt   time.Time `gorm:"index:idx_videos_created"`
	UpdatedAt   time.Time
}

// Analysis represents a persisted crowd analysis result associated with a
// video record. CrowdDensity and Incidents hold the JSON-encoded result
// documents.
type Analysis struct {
	ID           uint   `gorm:"primaryKey"`
	VideoID      string `gorm:"index:idx_analyses_video;not null;type:varchar(36)"`
	CrowdDensity string `gorm:"type:text"`
	Incidents    string `gorm:"type:text"`
	CreatedAt    time.Time
}

// VideoWithAnalysis pairs a video record with its latest analysis, if any.
type VideoWithAnalysis struct {
	Video    Video     `json:"video"`
	Analysis *Analysis `json:"analysis,omitempty"`
}
