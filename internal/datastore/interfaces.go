// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"github.com/crowdwatch/crowdwatch-go/internal/conf"
	"github.com/crowdwatch/crowdwatch-go/internal/errors"
	"gorm.io/gorm"
)

// Sentinel errors for record lookups.
var (
	ErrVideoNotFound    = errors.NewStd("video not found")
	ErrAnalysisNotFound = errors.NewStd("analysis not found")
)

// Interface abstracts the underlying database implementation and defines the
// operations available on the store.
type Interface interface {
	Open() error
	Close() error

	SaveVideo(video *Video) error
	GetVideo(id string) (Video, error)
	ListVideos(limit, offset int) ([]Video, error)
	UpdateVideoStatus(id, status string) error

	SaveAnalysis(analysis *Analysis) error
	GetLatestAnalysis(videoID string) (Analysis, error)
	ListVideosWithAnalysis(limit, offset int) ([]VideoWithAnalysis, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new datastore instance based on the provided configuration.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		return nil
	}
}

// SaveVideo inserts a new video record.
func (ds *DataStore) SaveVideo(video *Video) error {
	if ds.DB == nil {
		return errors.Newf("database connection is not initialized").
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}

	if err := ds.DB.Create(video).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "save_video").
			Build()
	}
	return nil
}

// GetVideo retrieves a video record by its ID.
func (ds *DataStore) GetVideo(id string) (Video, error) {
	var video Video
	if err := ds.DB.Where("id = ?", id).First(&video).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Video{}, errors.New(ErrVideoNotFound).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Context("video_id", id).
				Build()
		}
		return Video{}, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "get_video").
			Build()
	}
	return video, nil
}

// ListVideos returns video records ordered newest first.
func (ds *DataStore) ListVideos(limit, offset int) ([]Video, error) {
	var videos []Video
	query := ds.DB.Order("created_at DESC").Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&videos).Error; err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "list_videos").
			Build()
	}
	return videos, nil
}

// UpdateVideoStatus transitions a video record to the given status.
func (ds *DataStore) UpdateVideoStatus(id, status string) error {
	result := ds.DB.Model(&Video{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return errors.New(result.Error).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "update_video_status").
			Context("status", status).
			Build()
	}
	if result.RowsAffected == 0 {
		return errors.New(ErrVideoNotFound).
			Component("datastore").
			Category(errors.CategoryNotFound).
			Context("video_id", id).
			Build()
	}
	return nil
}

// SaveAnalysis inserts one analysis row for a video record.
func (ds *DataStore) SaveAnalysis(analysis *Analysis) error {
	if err := ds.DB.Create(analysis).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "save_analysis").
			Context("video_id", analysis.VideoID).
			Build()
	}
	return nil
}

// GetLatestAnalysis retrieves the newest analysis for a video record.
func (ds *DataStore) GetLatestAnalysis(videoID string) (Analysis, error) {
	var analysis Analysis
	err := ds.DB.Where("video_id = ?", videoID).
		Order("created_at DESC, id DESC").
		First(&analysis).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Analysis{}, errors.New(ErrAnalysisNotFound).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Context("video_id", videoID).
				Build()
		}
		return Analysis{}, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "get_latest_analysis").
			Build()
	}
	return analysis, nil
}

// ListVideosWithAnalysis returns video records newest first, each paired with
// its latest analysis when one exists.
func (ds *DataStore) ListVideosWithAnalysis(limit, offset int) ([]VideoWithAnalysis, error) {
	videos, err := ds.ListVideos(limit, offset)
	if err != nil {
		return nil, err
	}

	result := make([]VideoWithAnalysis, 0, len(videos))
	for i := range videos {
		entry := VideoWithAnalysis{Video: videos[i]}
		analysis, err := ds.GetLatestAnalysis(videos[i].ID)
		switch {
		case err == nil:
			entry.Analysis = &analysis
		case errors.Is(err, ErrAnalysisNotFound):
			// No analysis yet, return the bare record
		default:
			return nil, err
		}
		result = append(result, entry)
	}
	return result, nil
}
