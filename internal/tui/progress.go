package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
)

// lowBattery is the level below which the gauge label turns to a warning.
const lowBattery = 20

// Gauge renders the battery level as a bar.
type Gauge struct {
	bar   progress.Model
	level uint8
	known bool
}

// NewGauge creates an empty battery gauge.
func NewGauge() Gauge {
	return Gauge{
		bar: progress.New(
			progress.WithScaledGradient("#FF6B6B", "#73F59F"),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
	}
}

// Set records a new battery level.
func (g *Gauge) Set(level uint8) {
	g.level = level
	g.known = true
}

// Reset forgets the level, e.g. after a disconnect.
func (g *Gauge) Reset() {
	g.level = 0
	g.known = false
}

// Low reports whether a known level is below the warning threshold.
func (g Gauge) Low() bool {
	return g.known && g.level < lowBattery
}

// View renders the bar followed by the percentage.
func (g Gauge) View() string {
	if !g.known {
		return "--"
	}
	pct := float64(g.level) / 100
	if pct > 1 {
		pct = 1
	}
	return fmt.Sprintf("%s %d%%", g.bar.ViewAs(pct), g.level)
}
