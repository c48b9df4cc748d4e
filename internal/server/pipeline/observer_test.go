package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/voicediary/internal/logging"
	"github.com/dmitrijs2005/voicediary/internal/server/entrystate"
	"github.com/dmitrijs2005/voicediary/internal/server/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsObserver(reg)
	ctx := context.Background()

	m.ObserveOutcome(ctx, Outcome{EntryID: "a", Status: entrystate.Completed})
	m.ObserveOutcome(ctx, Outcome{EntryID: "b", Status: entrystate.Completed})
	m.ObserveOutcome(ctx, Outcome{EntryID: "c", Status: entrystate.FailedTranscription, Err: errors.New("x")})
	m.ObserveStage(ctx, StageTranscription, 2*time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.outcomes.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("failed_transcription")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.stages, "diary_pipeline_stage_duration_seconds"))

	expected := `
# HELP diary_pipeline_outcomes_total Entries that reached a terminal status, by status.
# TYPE diary_pipeline_outcomes_total counter
diary_pipeline_outcomes_total{status="completed"} 2
diary_pipeline_outcomes_total{status="failed_transcription"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "diary_pipeline_outcomes_total"))
}

func TestMetricsObserver_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetricsObserver(reg)
	assert.Panics(t, func() { NewMetricsObserver(reg) })
}

func TestLogObserver_Levels(t *testing.T) {
	var buf bytes.Buffer
	o := NewLogObserver(logging.New(&buf, "debug"))
	ctx := context.Background()

	o.ObserveOutcome(ctx, Outcome{EntryID: "ok", Status: entrystate.Completed, Stage: StageExtraction})
	o.ObserveOutcome(ctx, Outcome{EntryID: "empty", Status: entrystate.NoAudio, Stage: StageTranscription})
	o.ObserveOutcome(ctx, Outcome{EntryID: "bad", Status: entrystate.FailedExpenses, Stage: StageExtraction, Err: errors.New("insert failed")})
	o.ObserveStage(ctx, StageExtraction, time.Millisecond)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], `"level":"INFO"`)
	assert.Contains(t, lines[0], `"entry_id":"ok"`)
	assert.Contains(t, lines[1], `"level":"WARN"`)
	assert.Contains(t, lines[2], `"level":"ERROR"`)
	assert.Contains(t, lines[2], "insert failed")
	assert.Contains(t, lines[2], `"module":"pipeline"`)
	assert.Contains(t, lines[3], `"level":"DEBUG"`)
}

func TestPipeline_FeedsMetrics(t *testing.T) {
	f := newFixture(t)
	reg := prometheus.NewRegistry()
	m := NewMetricsObserver(reg)
	f.p.observers = append(f.p.observers, m)

	f.submit(&models.Entry{ID: "e1", Kind: models.EntryKindText, Transcript: "Rs 5"})
	f.store.expectCommits(f.mock, 6)
	require.NoError(t, f.p.Process(context.Background(), "e1"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("completed")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.stages))
}
