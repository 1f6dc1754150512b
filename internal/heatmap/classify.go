package heatmap

import (
	"fmt"
	"strings"
)

// Mode selects which metric drives cell intensity.
type Mode string

const (
	ModeGoals       Mode = "goals"
	ModeCompletions Mode = "completions"
	ModeHybrid      Mode = "hybrid"
)

// ParseMode accepts a mode name case-insensitively; empty means goals.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeGoals:
		return ModeGoals, nil
	case ModeCompletions:
		return ModeCompletions, nil
	case ModeHybrid:
		return ModeHybrid, nil
	default:
		return "", fmt.Errorf("unknown heatmap mode %q", raw)
	}
}

// Bucket is a discrete intensity class.
type Bucket int

const (
	BucketOut Bucket = iota
	BucketNone
	Bucket1
	Bucket2
	Bucket3
	Bucket4
)

// BucketFor maps a normalized intensity in [0, 1] to a bucket. Upper bounds
// are inclusive: (0, .25], (.25, .5], (.5, .75], (.75, 1].
func BucketFor(intensity float64) Bucket {
	switch {
	case intensity <= 0:
		return BucketNone
	case intensity <= 0.25:
		return Bucket1
	case intensity <= 0.5:
		return Bucket2
	case intensity <= 0.75:
		return Bucket3
	default:
		return Bucket4
	}
}

// Intensity normalizes a day's counts against the yearly maxima. In hybrid
// mode each metric is normalized on its own and the two are averaged; a
// metric with no observations contributes zero.
func Intensity(mode Mode, goalCount, completionCount, maxGoal, maxCompletion int) float64 {
	g := ratio(goalCount, maxGoal)
	c := ratio(completionCount, maxCompletion)
	switch mode {
	case ModeCompletions:
		return c
	case ModeHybrid:
		return (g + c) / 2
	default:
		return g
	}
}

func ratio(v, max int) float64 {
	if v <= 0 || max <= 0 {
		return 0
	}
	return float64(v) / float64(max)
}

// Classify buckets a cell under mode using the result's yearly maxima.
func (r Result) Classify(c Cell, mode Mode) Bucket {
	if !c.InYear {
		return BucketOut
	}
	return BucketFor(Intensity(mode, c.GoalCount, c.CompletionCount, r.MaxGoalCount, r.MaxCompletionCount))
}
