package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/jank324/paper-lapse/internal/contract"
	"github.com/jank324/paper-lapse/schema"
)

// SelectFrames reduces the timeline to the subsequence of commits that become
// frames, under the configured policy. Selection is pure: it performs no I/O
// and depends only on the timeline and the policy parameters, so a re-run
// against an unchanged repository selects the same commits.
//
// The result is checked against the configured frame ceiling before any build
// is attempted; an oversized selection is a fatal PolicyError.
func SelectFrames(timeline schema.Timeline, cfg *contract.Config) ([]schema.FrameSpec, error) {
	var selected []schema.Commit
	var err error

	switch cfg.Mode {
	case schema.EveryCommit:
		selected = selectEveryCommit(timeline)
	case schema.EndOfDay:
		selected = selectEndOfDay(timeline, cfg.Timezone, cfg.Timestamp)
	case schema.MinInterval:
		selected, err = selectMinInterval(timeline, cfg.Interval, cfg.Timestamp)
		if err != nil {
			return nil, err
		}
	default:
		return nil, &PolicyError{Msg: fmt.Sprintf("unknown selection mode %q", cfg.Mode)}
	}

	if len(selected) > cfg.MaxFrames {
		return nil, &PolicyError{Msg: fmt.Sprintf(
			"policy selects %d frames, exceeding the --max-frames ceiling of %d; raise the ceiling or widen the interval",
			len(selected), cfg.MaxFrames)}
	}

	specs := make([]schema.FrameSpec, len(selected))
	for i, c := range selected {
		specs[i] = schema.FrameSpec{Index: i, Source: c}
	}
	return specs, nil
}

// selectEveryCommit selects every commit, in original order.
func selectEveryCommit(timeline schema.Timeline) []schema.Commit {
	selected := make([]schema.Commit, len(timeline))
	copy(selected, timeline)
	return selected
}

// selectEndOfDay partitions commits by the calendar day of their timestamp in
// the given timezone and keeps the chronologically last commit of each day.
// Days without commits produce nothing; gaps in activity become gaps in
// selection. Output is ordered by day, ascending.
func selectEndOfDay(timeline schema.Timeline, loc *time.Location, source schema.TimestampSource) []schema.Commit {
	lastOfDay := make(map[string]schema.Commit)
	for _, c := range timeline {
		day := c.When(source).In(loc).Format("2006-01-02")
		prev, seen := lastOfDay[day]
		if !seen {
			lastOfDay[day] = c
			continue
		}
		// Later timestamp wins; equal timestamps fall back to history order.
		when, prevWhen := c.When(source), prev.When(source)
		if when.After(prevWhen) || (when.Equal(prevWhen) && c.Ordinal > prev.Ordinal) {
			lastOfDay[day] = c
		}
	}

	days := make([]string, 0, len(lastOfDay))
	for day := range lastOfDay {
		days = append(days, day)
	}
	sort.Strings(days)

	selected := make([]schema.Commit, 0, len(days))
	for _, day := range days {
		selected = append(selected, lastOfDay[day])
	}
	return selected
}

// selectMinInterval walks the timeline in order, selecting the first commit
// and thereafter the next commit whose timestamp is at least delta after the
// most recently selected commit's timestamp. Spacing is measured against the
// selected commit, not the previous raw commit, so selected frames are at
// least delta apart.
func selectMinInterval(timeline schema.Timeline, delta time.Duration, source schema.TimestampSource) ([]schema.Commit, error) {
	if delta <= 0 {
		return nil, &PolicyError{Msg: fmt.Sprintf("interval must be positive (received %s)", delta)}
	}

	var selected []schema.Commit
	var lastSelected time.Time
	for _, c := range timeline {
		if len(selected) == 0 {
			selected = append(selected, c)
			lastSelected = c.When(source)
			continue
		}
		if c.When(source).Sub(lastSelected) >= delta {
			selected = append(selected, c)
			lastSelected = c.When(source)
		}
	}
	return selected, nil
}
