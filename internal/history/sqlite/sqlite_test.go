package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/loykin/solarctl/internal/history"
)

func TestSinkRoundTrip(t *testing.T) {
	sink, err := New(":memory:")
	require.NoError(t, err)
	defer func() { require.NoError(t, sink.Close()) }()

	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	err = sink.Send(context.Background(), history.Event{
		Type:       history.EventLaunch,
		OccurredAt: started,
		Record: history.Record{
			Slug:       "mygame",
			ProjectDir: "/projects/mygame",
			PID:        4242,
			StartedAt:  started,
		},
	})
	require.NoError(t, err)

	var event, slug, projectDir string
	var pid int
	row := sink.db.QueryRow(`SELECT event, slug, project_dir, pid FROM launch_history`)
	require.NoError(t, row.Scan(&event, &slug, &projectDir, &pid))
	require.Equal(t, "launch", event)
	require.Equal(t, "mygame", slug)
	require.Equal(t, "/projects/mygame", projectDir)
	require.Equal(t, 4242, pid)
}

func TestSinkRecordsFailures(t *testing.T) {
	sink, err := New("sqlite://:memory:")
	require.NoError(t, err)
	defer func() { _ = sink.Close() }()

	err = sink.Send(context.Background(), history.Event{
		Type:       history.EventLaunchFailure,
		OccurredAt: time.Now(),
		Record: history.Record{
			Slug:       "mygame",
			ProjectDir: "/projects/mygame",
			Error:      "exec: no such file",
		},
	})
	require.NoError(t, err)

	var errText string
	row := sink.db.QueryRow(`SELECT error FROM launch_history WHERE event = 'launch_failure'`)
	require.NoError(t, row.Scan(&errText))
	require.Equal(t, "exec: no such file", errText)
}

func TestNewRejectsEmptyDSN(t *testing.T) {
	_, err := New("   ")
	require.Error(t, err)
}
