package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/perfctl/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopCollectorWhenDisabled(t *testing.T) {
	collector, err := history.NewService(history.Config{Enabled: false})
	require.NoError(t, err)

	assert.NoError(t, collector.RecordSnapshot(context.Background(), &history.Snapshot{}))
	assert.NoError(t, collector.RecordEvent(context.Background(), &history.Event{}))
	assert.NoError(t, collector.Close())
}

func TestEnabledRequiresDBPath(t *testing.T) {
	_, err := history.NewService(history.Config{Enabled: true, DBPath: ""})
	require.Error(t, err)
}

func TestRecordAndClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	collector, err := history.NewService(history.Config{Enabled: true, DBPath: dbPath})
	require.NoError(t, err)
	defer collector.Close()

	ctx := context.Background()
	err = collector.RecordSnapshot(ctx, &history.Snapshot{
		Timestamp:       time.Unix(100, 0),
		FPS:             58.5,
		RAMUsagePct:     61.2,
		TemperatureC:    41.0,
		ThermalState:    "warm",
		Throttle:        0.1,
		ResolutionScale: 1.1,
		LODLevel:        0.9,
		Corrected:       true,
	})
	require.NoError(t, err)

	// Same timestamp upserts rather than failing.
	err = collector.RecordSnapshot(ctx, &history.Snapshot{
		Timestamp: time.Unix(100, 0),
		FPS:       60,
	})
	require.NoError(t, err)

	err = collector.RecordEvent(ctx, &history.Event{
		Timestamp: time.Unix(100, 0),
		Category:  "correction",
		Magnitude: 0.7,
		Reasons:   "fps_below_target",
	})
	require.NoError(t, err)
}

func TestNilRecordRejected(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	collector, err := history.NewService(history.Config{Enabled: true, DBPath: dbPath})
	require.NoError(t, err)
	defer collector.Close()

	assert.Error(t, collector.RecordSnapshot(context.Background(), nil))
	assert.Error(t, collector.RecordEvent(context.Background(), nil))
}
