package streak

import "github.com/gerrardelliot83-create/floe/internal/model"

// Unbounded marks the top tier, which has no next threshold.
const Unbounded = -1

type tier struct {
	below int
	title string
}

var tiers = []tier{
	{below: 5, title: "Beginner"},
	{below: 20, title: "Focused"},
	{below: 50, title: "Dedicated"},
	{below: 100, title: "Master"},
	{below: 200, title: "Expert"},
}

const topTitle = "Legend"

// LevelFor maps a lifetime session count to its tier. Each tier includes
// its lower bound.
func LevelFor(totalSessions int) model.Level {
	for i, t := range tiers {
		if totalSessions < t.below {
			return model.Level{Level: i + 1, Title: t.title, NextAt: t.below}
		}
	}
	return model.Level{Level: len(tiers) + 1, Title: topTitle, NextAt: Unbounded}
}

// Progress returns the fraction of the way from the current tier's start
// to the next tier, in [0, 1].
func Progress(totalSessions int) float64 {
	lvl := LevelFor(totalSessions)
	if lvl.NextAt == Unbounded {
		return 1
	}
	start := 0
	if lvl.Level > 1 {
		start = tiers[lvl.Level-2].below
	}
	span := lvl.NextAt - start
	done := totalSessions - start
	if done < 0 {
		done = 0
	}
	return float64(done) / float64(span)
}
