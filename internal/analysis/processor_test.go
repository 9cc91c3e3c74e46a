package analysis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdwatch/crowdwatch-go/internal/conf"
	"github.com/crowdwatch/crowdwatch-go/internal/crowd"
	"github.com/crowdwatch/crowdwatch-go/internal/datastore"
	"github.com/crowdwatch/crowdwatch-go/internal/errors"
	"github.com/crowdwatch/crowdwatch-go/internal/inference"
)

// mockStore implements datastore.Interface with per-call hooks so tests can
// observe writes and inject failures.
type mockStore struct {
	videos   map[string]datastore.Video
	analyses []datastore.Analysis
	statuses map[string]string

	saveAnalysisErr error
	updateStatusErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		videos:   make(map[string]datastore.Video),
		statuses: make(map[string]string),
	}
}

func (m *mockStore) Open() error  { return nil }
func (m *mockStore) Close() error { return nil }

func (m *mockStore) SaveVideo(video *datastore.Video) error {
	m.videos[video.ID] = *video
	return nil
}

func (m *mockStore) GetVideo(id string) (datastore.Video, error) {
	v, ok := m.videos[id]
	if !ok {
		return datastore.Video{}, errors.New(datastore.ErrVideoNotFound).
			Component("datastore").
			Category(errors.CategoryNotFound).
			Build()
	}
	return v, nil
}

func (m *mockStore) ListVideos(limit, offset int) ([]datastore.Video, error) {
	return nil, nil
}

func (m *mockStore) UpdateVideoStatus(id, status string) error {
	if m.updateStatusErr != nil {
		return m.updateStatusErr
	}
	m.statuses[id] = status
	return nil
}

func (m *mockStore) SaveAnalysis(analysis *datastore.Analysis) error {
	if m.saveAnalysisErr != nil {
		return m.saveAnalysisErr
	}
	m.analyses = append(m.analyses, *analysis)
	return nil
}

func (m *mockStore) GetLatestAnalysis(videoID string) (datastore.Analysis, error) {
	for i := len(m.analyses) - 1; i >= 0; i-- {
		if m.analyses[i].VideoID == videoID {
			return m.analyses[i], nil
		}
	}
	return datastore.Analysis{}, errors.New(datastore.ErrAnalysisNotFound).
		Component("datastore").
		Category(errors.CategoryNotFound).
		Build()
}

func (m *mockStore) ListVideosWithAnalysis(limit, offset int) ([]datastore.VideoWithAnalysis, error) {
	return nil, nil
}

func testSettings() *conf.Settings {
	return &conf.Settings{}
}

func TestProcessVideoSuccess(t *testing.T) {
	t.Parallel()

	ds := newMockStore()
	ds.videos["video-1"] = datastore.Video{
		ID:       "video-1",
		ClipPath: "2026/08/clip.mp4",
		Status:   datastore.VideoStatusProcessing,
	}

	p := New(testSettings(), ds, inference.NewRandomProvider(), nil, nil)

	result, err := p.ProcessVideo(context.Background(), "video-1")
	require.NoError(t, err)
	require.NotNil(t, result)

	// Exactly one analysis row inserted, video marked completed
	require.Len(t, ds.analyses, 1)
	record := ds.analyses[0]
	assert.Equal(t, "video-1", record.VideoID)
	assert.Equal(t, datastore.VideoStatusCompleted, ds.statuses["video-1"])

	// Persisted documents round-trip to the returned result
	var density crowd.Density
	require.NoError(t, json.Unmarshal([]byte(record.CrowdDensity), &density))
	assert.Equal(t, result.CrowdDensity, density)

	var incidents []crowd.Incident
	require.NoError(t, json.Unmarshal([]byte(record.Incidents), &incidents))
	assert.Len(t, incidents, len(result.Incidents))
}

func TestProcessVideoMissingID(t *testing.T) {
	t.Parallel()

	ds := newMockStore()
	p := New(testSettings(), ds, inference.NewRandomProvider(), nil, nil)

	result, err := p.ProcessVideo(context.Background(), "")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, errors.CategoryValidation, errors.CategoryOf(err))
	assert.Empty(t, ds.analyses)
}

func TestProcessVideoNotFound(t *testing.T) {
	t.Parallel()

	ds := newMockStore()
	p := New(testSettings(), ds, inference.NewRandomProvider(), nil, nil)

	result, err := p.ProcessVideo(context.Background(), "missing")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, errors.CategoryNotFound, errors.CategoryOf(err))

	// A missing video must not insert anything
	assert.Empty(t, ds.analyses)
	assert.Empty(t, ds.statuses)
}

func TestProcessVideoPersistenceFailureLeavesProcessing(t *testing.T) {
	t.Parallel()

	ds := newMockStore()
	ds.videos["video-1"] = datastore.Video{
		ID:       "video-1",
		ClipPath: "2026/08/clip.mp4",
		Status:   datastore.VideoStatusProcessing,
	}
	ds.saveAnalysisErr = errors.Newf("disk full").
		Component("datastore").
		Category(errors.CategoryDatabase).
		Build()

	p := New(testSettings(), ds, inference.NewRandomProvider(), nil, nil)

	result, err := p.ProcessVideo(context.Background(), "video-1")
	require.Error(t, err)
	assert.Nil(t, result)

	// Nothing persisted, status untouched so the request can be retried
	assert.Empty(t, ds.analyses)
	assert.Empty(t, ds.statuses)
}

func TestProcessVideoStatusUpdateFailure(t *testing.T) {
	t.Parallel()

	ds := newMockStore()
	ds.videos["video-1"] = datastore.Video{
		ID:       "video-1",
		ClipPath: "2026/08/clip.mp4",
		Status:   datastore.VideoStatusProcessing,
	}
	ds.updateStatusErr = errors.Newf("database locked").
		Component("datastore").
		Category(errors.CategoryDatabase).
		Build()

	p := New(testSettings(), ds, inference.NewRandomProvider(), nil, nil)

	_, err := p.ProcessVideo(context.Background(), "video-1")
	require.Error(t, err)
	assert.Len(t, ds.analyses, 1)
	assert.Empty(t, ds.statuses)
}
