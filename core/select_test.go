package core

import (
	"testing"
	"time"

	"github.com/jank324/paper-lapse/internal/contract"
	"github.com/jank324/paper-lapse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildHistory creates a timeline from timestamps, oldest first.
func buildHistory(times ...time.Time) schema.Timeline {
	timeline := make(schema.Timeline, len(times))
	for i, ts := range times {
		timeline[i] = schema.Commit{
			Hash:       string(rune('a'+i)) + "0000000",
			Subject:    "commit",
			AuthorTime: ts,
			CommitTime: ts,
			Ordinal:    i,
		}
	}
	return timeline
}

func selectionConfig(mode schema.SelectionMode) *contract.Config {
	return &contract.Config{
		Mode:      mode,
		Timezone:  time.UTC,
		Timestamp: schema.AuthorTimestamp,
		MaxFrames: contract.DefaultMaxFrames,
	}
}

// TestSelectFramesEveryCommit tests the one-frame-per-commit policy.
func TestSelectFramesEveryCommit(t *testing.T) {
	base := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	timeline := buildHistory(base, base.Add(time.Hour), base.Add(2*time.Hour))

	specs, err := SelectFrames(timeline, selectionConfig(schema.EveryCommit))
	require.NoError(t, err)
	require.Len(t, specs, 3)

	for i, s := range specs {
		assert.Equal(t, i, s.Index)
		assert.Equal(t, timeline[i].Hash, s.Source.Hash)
	}
}

// TestSelectFramesEndOfDay tests calendar-day bucketing with the documented
// five-commit, three-day history.
func TestSelectFramesEndOfDay(t *testing.T) {
	timeline := buildHistory(
		time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 1, 17, 30, 0, 0, time.UTC),
		time.Date(2024, time.March, 2, 11, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 4, 8, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 4, 23, 59, 0, 0, time.UTC),
	)

	specs, err := SelectFrames(timeline, selectionConfig(schema.EndOfDay))
	require.NoError(t, err)
	require.Len(t, specs, 3)

	// Last commit of each active day; March 3 has no commits and no frame.
	assert.Equal(t, timeline[1].Hash, specs[0].Source.Hash)
	assert.Equal(t, timeline[2].Hash, specs[1].Source.Hash)
	assert.Equal(t, timeline[4].Hash, specs[2].Source.Hash)

	// Indices are reassigned to be contiguous over the selection.
	for i, s := range specs {
		assert.Equal(t, i, s.Index)
	}
}

// TestSelectFramesEndOfDayTimezone verifies that day boundaries follow the
// configured timezone, not UTC.
func TestSelectFramesEndOfDayTimezone(t *testing.T) {
	// 23:30 UTC on March 1 is already March 2 in UTC+2.
	timeline := buildHistory(
		time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 1, 23, 30, 0, 0, time.UTC),
	)

	cfg := selectionConfig(schema.EndOfDay)
	cfg.Timezone = time.FixedZone("UTC+2", 2*60*60)

	specs, err := SelectFrames(timeline, cfg)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, timeline[0].Hash, specs[0].Source.Hash)
	assert.Equal(t, timeline[1].Hash, specs[1].Source.Hash)
}

// TestSelectFramesEndOfDayTie verifies that equal timestamps fall back to
// history order within a day.
func TestSelectFramesEndOfDayTie(t *testing.T) {
	ts := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	timeline := buildHistory(ts, ts)

	specs, err := SelectFrames(timeline, selectionConfig(schema.EndOfDay))
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, 1, specs[0].Source.Ordinal)
}

// TestSelectFramesMinInterval tests spacing against the selected commit with
// the documented 100-commit, one-per-minute history and a 10 minute floor.
func TestSelectFramesMinInterval(t *testing.T) {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, 100)
	for i := range times {
		times[i] = base.Add(time.Duration(i) * time.Minute)
	}
	timeline := buildHistory(times...)

	cfg := selectionConfig(schema.MinInterval)
	cfg.Interval = 10 * time.Minute

	specs, err := SelectFrames(timeline, cfg)
	require.NoError(t, err)
	require.Len(t, specs, 10)

	// Commits 0, 10, 20, ... 90.
	for i, s := range specs {
		assert.Equal(t, i*10, s.Source.Ordinal)
	}
}

// TestSelectFramesMinIntervalFirstAlways verifies the first commit is always
// selected regardless of the interval size.
func TestSelectFramesMinIntervalFirstAlways(t *testing.T) {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	timeline := buildHistory(base, base.Add(time.Second))

	cfg := selectionConfig(schema.MinInterval)
	cfg.Interval = 24 * time.Hour

	specs, err := SelectFrames(timeline, cfg)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, 0, specs[0].Source.Ordinal)
}

// TestSelectFramesMinIntervalNonPositive verifies a non-positive interval is
// rejected as a policy error.
func TestSelectFramesMinIntervalNonPositive(t *testing.T) {
	timeline := buildHistory(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))

	cfg := selectionConfig(schema.MinInterval)
	cfg.Interval = 0

	_, err := SelectFrames(timeline, cfg)
	require.Error(t, err)

	var policyErr *PolicyError
	assert.ErrorAs(t, err, &policyErr)
}

// TestSelectFramesCeiling verifies an oversized selection aborts before any
// build is attempted.
func TestSelectFramesCeiling(t *testing.T) {
	base := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, 5)
	for i := range times {
		times[i] = base.Add(time.Duration(i) * time.Hour)
	}
	timeline := buildHistory(times...)

	cfg := selectionConfig(schema.EveryCommit)
	cfg.MaxFrames = 3

	_, err := SelectFrames(timeline, cfg)
	require.Error(t, err)

	var policyErr *PolicyError
	assert.ErrorAs(t, err, &policyErr)
}

// TestSelectFramesDeterminism verifies selection is a pure function of the
// timeline and policy.
func TestSelectFramesDeterminism(t *testing.T) {
	timeline := buildHistory(
		time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 1, 18, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 2, 10, 0, 0, 0, time.UTC),
	)
	cfg := selectionConfig(schema.EndOfDay)

	first, err := SelectFrames(timeline, cfg)
	require.NoError(t, err)
	second, err := SelectFrames(timeline, cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// TestSelectFramesTimestampSource verifies the commit timestamp source changes
// which timestamps drive scheduling.
func TestSelectFramesTimestampSource(t *testing.T) {
	// Author times are one minute apart; committer times are a day apart.
	timeline := schema.Timeline{
		{
			Hash:       "a0000000",
			AuthorTime: time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC),
			CommitTime: time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC),
			Ordinal:    0,
		},
		{
			Hash:       "b0000000",
			AuthorTime: time.Date(2024, time.March, 1, 9, 1, 0, 0, time.UTC),
			CommitTime: time.Date(2024, time.March, 2, 9, 0, 0, 0, time.UTC),
			Ordinal:    1,
		},
	}

	cfg := selectionConfig(schema.MinInterval)
	cfg.Interval = time.Hour

	specs, err := SelectFrames(timeline, cfg)
	require.NoError(t, err)
	assert.Len(t, specs, 1)

	cfg.Timestamp = schema.CommitTimestamp
	specs, err = SelectFrames(timeline, cfg)
	require.NoError(t, err)
	assert.Len(t, specs, 2)
}
