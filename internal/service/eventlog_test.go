package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"filling_line"
	"filling_line/internal/logger"
	"filling_line/internal/repository"
	"filling_line/internal/repository/db"

	"github.com/stretchr/testify/require"
)

var lineEventTypes = []string{
	filling_line.EventCommand,
	filling_line.EventStatusChange,
	filling_line.EventCleaningChange,
	filling_line.EventAlarm,
	filling_line.EventEmergency,
}

func TestFilter_AcceptsEveryLineEventType(t *testing.T) {
	require.Len(t, knownEventTypes, len(lineEventTypes))

	for _, typ := range lineEventTypes {
		t.Run(typ, func(t *testing.T) {
			require.True(t, knownEventTypes[typ])

			_, _, got, err := normalizeAndValidateFilter(LogFilter{Type: " " + strings.ToLower(typ) + " "})
			require.NoError(t, err)
			require.Equal(t, typ, got)
		})
	}
}

func TestFilter_RejectsForeignTypes(t *testing.T) {
	for _, typ := range []string{"START", "MODE_CHANGE", "TELEMETRY", "alarms"} {
		_, _, _, err := normalizeAndValidateFilter(LogFilter{Type: typ})
		require.ErrorIs(t, err, ErrUnknownEventType, typ)
		require.Contains(t, err.Error(), strings.ToUpper(typ))
	}
}

func TestFilter_TimeRange(t *testing.T) {
	plant := time.FixedZone("CET", 3600)
	shiftStart := time.Date(2025, time.March, 14, 6, 0, 0, 0, plant)

	cases := []struct {
		name     string
		in       LogFilter
		wantFrom time.Time
		wantTo   time.Time
		wantErr  error
	}{
		{name: "unbounded", in: LogFilter{}},
		{
			name:     "local shift start converted to UTC",
			in:       LogFilter{From: shiftStart, To: shiftStart.Add(8 * time.Hour)},
			wantFrom: time.Date(2025, time.March, 14, 5, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2025, time.March, 14, 13, 0, 0, 0, time.UTC),
		},
		{
			name:     "single instant",
			in:       LogFilter{From: t0, To: t0},
			wantFrom: t0,
			wantTo:   t0,
		},
		{
			name:    "inverted",
			in:      LogFilter{From: t0, To: t0.Add(-time.Second)},
			wantErr: ErrInvalidTimeRange,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			from, to, _, err := normalizeAndValidateFilter(tc.in)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.True(t, tc.wantFrom.Equal(from), "from %v", from)
			require.True(t, tc.wantTo.Equal(to), "to %v", to)
			if !from.IsZero() {
				require.Equal(t, time.UTC, from.Location())
			}
		})
	}
}

func TestEventLogService_ListForwardsNormalizedFilter(t *testing.T) {
	repo := &eventRepoStub{listResp: []filling_line.LineEvent{{EventID: "e1", Type: filling_line.EventAlarm}}}
	svc := NewEventLogService(repo)

	out, err := svc.List(context.Background(), LogFilter{
		From: t0.In(time.FixedZone("CET", 3600)),
		Type: "cleaning_change",
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, 1, repo.listCalls)
	require.True(t, repo.listFrom.Equal(t0))
	require.True(t, repo.listTo.IsZero())
	require.Equal(t, filling_line.EventCleaningChange, repo.listType)
}

func TestEventLogService_ListErrors(t *testing.T) {
	repo := &eventRepoStub{listErr: errDown}
	svc := NewEventLogService(repo)

	_, err := svc.List(context.Background(), LogFilter{Type: "START"})
	require.ErrorIs(t, err, ErrUnknownEventType)
	require.Zero(t, repo.listCalls, "invalid filters must not reach storage")

	_, err = svc.List(context.Background(), LogFilter{})
	require.ErrorIs(t, err, errDown)
	require.Equal(t, 1, repo.listCalls)
}

// TestEventLog_SQLiteRetentionAndOrder records through the recorder into a
// real database: events come back oldest first and only the newest
// retention-many survive, whatever order they were recorded in.
func TestEventLog_SQLiteRetentionAndOrder(t *testing.T) {
	conn, err := db.InitDB(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	repos := repository.NewRepository(conn)
	rec := newEventRecorder(repos.EventRepo, 3, logger.Nop())
	ctx := context.Background()

	recorded := []struct {
		offset time.Duration
		typ    string
	}{
		{2 * time.Second, filling_line.EventAlarm},
		{0, filling_line.EventCommand},
		{4 * time.Second, filling_line.EventStatusChange},
		{1 * time.Second, filling_line.EventAlarm},
		{3 * time.Second, filling_line.EventAlarm},
	}
	for _, r := range recorded {
		rec.record(ctx, t0.Add(r.offset), r.typ, "at +"+r.offset.String(), map[string]any{"offset": r.offset.String()})
	}

	svc := NewEventLogService(repos.EventRepo)
	all, err := svc.List(ctx, LogFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, want := range []time.Duration{2 * time.Second, 3 * time.Second, 4 * time.Second} {
		require.True(t, all[i].OccurredAt.Equal(t0.Add(want)), "event %d at %v", i, all[i].OccurredAt)
		require.NotEmpty(t, all[i].EventID)
	}

	alarms, err := svc.List(ctx, LogFilter{Type: "alarm"})
	require.NoError(t, err)
	require.Len(t, alarms, 2)
	require.Equal(t, "at +2s", alarms[0].Description)
	require.Equal(t, "at +3s", alarms[1].Description)
}

func TestEventRecorder_NoRetentionKeepsEverything(t *testing.T) {
	repo := &eventRepoStub{}
	rec := newRecorder(repo, 0)

	for i := 0; i < 4; i++ {
		rec.record(context.Background(), t0.Add(time.Duration(i)*time.Second), filling_line.EventCommand, "cmd", nil)
	}

	require.Len(t, repo.appends, 4)
	require.Empty(t, repo.prunes)
	require.Equal(t, time.UTC, repo.appends[0].OccurredAt.Location())
}
