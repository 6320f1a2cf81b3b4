// Package spaced_repetition implements the fixed-ladder interval scheme used
// to schedule vocabulary reviews.
package spaced_repetition

// MaxLevel is the top rung of the SRS ladder
const MaxLevel = 9

// ladderEntry maps a level to its display label and review delay
type ladderEntry struct {
	Label        string
	DelayMinutes int
}

// Ladder is the fixed level table. Delays are non-decreasing; level 9 keeps
// the 24-hour delay of level 8 and only changes the displayed status.
var ladder = [MaxLevel + 1]ladderEntry{
	{Label: "New", DelayMinutes: 0},
	{Label: "Just Learned", DelayMinutes: 5},
	{Label: "Familiar", DelayMinutes: 15},
	{Label: "Strengthening", DelayMinutes: 30},
	{Label: "Confident", DelayMinutes: 60},
	{Label: "Strong", DelayMinutes: 180},
	{Label: "Very Strong", DelayMinutes: 360},
	{Label: "Established", DelayMinutes: 720},
	{Label: "Mastered", DelayMinutes: 1440},
	{Label: "Expert", DelayMinutes: 1440},
}

// clampLevel forces a level into the valid 0..MaxLevel range. The scheduler
// clamps before every lookup, so an out-of-range level here is a programming
// error; the clamp keeps the lookup total instead of panicking.
func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// LabelFor returns the display label for a ladder level
func LabelFor(level int) string {
	return ladder[clampLevel(level)].Label
}

// DelayMinutesFor returns the review delay in minutes for a ladder level
func DelayMinutesFor(level int) int {
	return ladder[clampLevel(level)].DelayMinutes
}
