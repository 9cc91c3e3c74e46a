package datastore

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdwatch/crowdwatch-go/internal/conf"
	"github.com/crowdwatch/crowdwatch-go/internal/errors"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "test.db")

	store := &SQLiteStore{Settings: settings}
	require.NoError(t, store.Open())
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func newTestVideo() *Video {
	return &Video{
		ID:          uuid.New().String(),
		Title:       "Lobby camera",
		ClipPath:    "2026/08/clip.mp4",
		ContentType: "video/mp4",
		Size:        1024,
		Status:      VideoStatusProcessing,
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	sqliteSettings := &conf.Settings{}
	sqliteSettings.Output.SQLite.Enabled = true
	assert.IsType(t, &SQLiteStore{}, New(sqliteSettings))

	mysqlSettings := &conf.Settings{}
	mysqlSettings.Output.MySQL.Enabled = true
	assert.IsType(t, &MySQLStore{}, New(mysqlSettings))

	assert.Nil(t, New(&conf.Settings{}))
}

func TestSaveAndGetVideo(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	video := newTestVideo()

	require.NoError(t, store.SaveVideo(video))

	got, err := store.GetVideo(video.ID)
	require.NoError(t, err)
	assert.Equal(t, video.Title, got.Title)
	assert.Equal(t, video.ClipPath, got.ClipPath)
	assert.Equal(t, VideoStatusProcessing, got.Status)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetVideoNotFound(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.GetVideo("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVideoNotFound))
	assert.Equal(t, errors.CategoryNotFound, errors.CategoryOf(err))
}

func TestListVideosOrdering(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	for range 3 {
		require.NoError(t, store.SaveVideo(newTestVideo()))
	}

	videos, err := store.ListVideos(0, 0)
	require.NoError(t, err)
	require.Len(t, videos, 3)
	for i := 1; i < len(videos); i++ {
		assert.False(t, videos[i].CreatedAt.After(videos[i-1].CreatedAt), "videos must be ordered newest first")
	}

	limited, err := store.ListVideos(2, 0)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestUpdateVideoStatus(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	video := newTestVideo()
	require.NoError(t, store.SaveVideo(video))

	require.NoError(t, store.UpdateVideoStatus(video.ID, VideoStatusCompleted))

	got, err := store.GetVideo(video.ID)
	require.NoError(t, err)
	assert.Equal(t, VideoStatusCompleted, got.Status)
}

func TestUpdateVideoStatusNotFound(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	err := store.UpdateVideoStatus("missing", VideoStatusCompleted)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVideoNotFound))
}

func TestSaveAndGetLatestAnalysis(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	video := newTestVideo()
	require.NoError(t, store.SaveVideo(video))

	first := &Analysis{VideoID: video.ID, CrowdDensity: `{"overall":0.3}`, Incidents: `[]`}
	require.NoError(t, store.SaveAnalysis(first))

	second := &Analysis{VideoID: video.ID, CrowdDensity: `{"overall":0.8}`, Incidents: `[]`}
	require.NoError(t, store.SaveAnalysis(second))

	got, err := store.GetLatestAnalysis(video.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, `{"overall":0.8}`, got.CrowdDensity)
}

func TestGetLatestAnalysisNotFound(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.GetLatestAnalysis("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAnalysisNotFound))
}

func TestListVideosWithAnalysis(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	analyzed := newTestVideo()
	require.NoError(t, store.SaveVideo(analyzed))
	require.NoError(t, store.SaveAnalysis(&Analysis{VideoID: analyzed.ID, CrowdDensity: `{}`, Incidents: `[]`}))

	pending := newTestVideo()
	require.NoError(t, store.SaveVideo(pending))

	entries, err := store.ListVideosWithAnalysis(0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byID := make(map[string]VideoWithAnalysis, len(entries))
	for _, e := range entries {
		byID[e.Video.ID] = e
	}
	assert.NotNil(t, byID[analyzed.ID].Analysis)
	assert.Nil(t, byID[pending.ID].Analysis)
}
