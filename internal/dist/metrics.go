package dist

// DefaultHistoryWindow bounds the per-metric history buffer.
const DefaultHistoryWindow = 20

// PopulationMetric tracks one observed quantity (an entity subtype count,
// a relationship-kind count, or a pressure signal) against its target.
// History is a bounded FIFO of the most recent observations.
type PopulationMetric struct {
	Key       string  `json:"key"`
	Count     float64 `json:"count"`
	Target    float64 `json:"target"`
	Deviation float64 `json:"deviation"`

	history []float64
	window  int
}

// NewPopulationMetric pre-seeds a metric at count zero. With a positive
// target the seeded deviation is -1, which makes declared-but-missing
// content visible to the controller from tick zero.
func NewPopulationMetric(key string, target float64, window int) *PopulationMetric {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	m := &PopulationMetric{Key: key, Target: target, window: window}
	if target > 0 {
		m.Deviation = -1
	}
	return m
}

// Observe records a new count, recomputes deviation and appends to the
// history buffer, evicting the oldest entry once the window is full.
// Deviation is (count-target)/target, and 0 when the target is not
// positive, so it is always finite.
func (m *PopulationMetric) Observe(count float64) {
	m.Count = count
	if m.Target > 0 {
		m.Deviation = (count - m.Target) / m.Target
	} else {
		m.Deviation = 0
	}
	m.history = append(m.history, count)
	if len(m.history) > m.window {
		m.history = m.history[1:]
	}
}

// SetTarget retargets the metric, keeping history intact.
func (m *PopulationMetric) SetTarget(target float64) {
	m.Target = target
	if m.Target > 0 {
		m.Deviation = (m.Count - m.Target) / m.Target
	} else {
		m.Deviation = 0
	}
}

// Trend returns the mean first difference over the history window:
// positive when the quantity is growing, negative when shrinking, zero
// with fewer than two observations.
func (m *PopulationMetric) Trend() float64 {
	if len(m.history) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(m.history); i++ {
		total += m.history[i] - m.history[i-1]
	}
	return total / float64(len(m.history)-1)
}

// History returns a copy of the observation buffer, oldest first.
func (m *PopulationMetric) History() []float64 {
	out := make([]float64, len(m.history))
	copy(out, m.history)
	return out
}
