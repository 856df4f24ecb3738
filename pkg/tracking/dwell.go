package tracking

import "time"

// Edge identifies a screen-edge zone
type Edge int

const (
	EdgeNone Edge = iota
	EdgeLeft
	EdgeRight
)

// String returns "left", "right" or "none"
func (e Edge) String() string {
	switch e {
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	}
	return "none"
}

// DwellState holds one start time per edge. The zero time means not dwelling.
type DwellState struct {
	Left  time.Time `json:"left"`
	Right time.Time `json:"right"`
}

func (s *DwellState) slot(e Edge) *time.Time {
	switch e {
	case EdgeLeft:
		return &s.Left
	case EdgeRight:
		return &s.Right
	}
	return nil
}

// EdgeDwell fires when the gaze has rested in a screen-edge zone long enough.
//
// A zone's timer starts when the gaze is seen in that zone and is only cleared by
// firing. Looking away does not cancel it, so a later return to the same zone can
// fire immediately once the threshold has elapsed since the original entry.
type EdgeDwell struct {
	width     float64
	ratio     float64
	threshold time.Duration

	state DwellState
}

// NewEdgeDwell creates a detector for a screen of the given width
func NewEdgeDwell(config Config, screenWidth int) *EdgeDwell {
	return &EdgeDwell{
		width:     float64(screenWidth),
		ratio:     config.EdgeRatio,
		threshold: config.DwellThreshold,
	}
}

// Zone returns the edge zone containing x
func (d *EdgeDwell) Zone(x float64) Edge {
	switch {
	case x < d.width*d.ratio:
		return EdgeLeft
	case x > d.width*(1-d.ratio):
		return EdgeRight
	}
	return EdgeNone
}

// Update advances the timer of the zone containing x.
// Returns the zone and whether its dwell threshold fired on this call.
func (d *EdgeDwell) Update(x float64, now time.Time) (Edge, bool) {
	edge := d.Zone(x)
	started := d.state.slot(edge)
	if started == nil {
		return EdgeNone, false
	}

	if started.IsZero() {
		*started = now
		return edge, false
	}

	if now.Sub(*started) >= d.threshold {
		*started = time.Time{}
		return edge, true
	}
	return edge, false
}

// State returns a copy of the per-edge timers
func (d *EdgeDwell) State() DwellState {
	return d.state
}
