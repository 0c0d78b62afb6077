// Package series merges an observed price history and a forecast into a
// single renderable dataset. Both inputs are independently indexed; the
// output is one label axis with two parallel value tracks where absent
// values stay absent (JSON null) instead of collapsing to zero.
package series

// Aligned is the merged dataset. Labels, Historical and Predicted always
// have equal length. A nil value is a gap, never a zero.
type Aligned struct {
	Labels     []string   `json:"labels"`
	Historical []*float64 `json:"historical"`
	Predicted  []*float64 `json:"predicted"`
}

// Empty reports whether the dataset has nothing to render.
func (a Aligned) Empty() bool {
	return len(a.Labels) == 0
}

// Option configures Align.
type Option func(*alignConfig)

type alignConfig struct {
	thin bool
}

// WithThinning decimates the predicted points to declutter dense forecast
// overlays: the first two points are always dropped, then a repeating
// keep-5-drop-2 cycle applies to the remainder. The historical track is
// never touched.
func WithThinning() Option {
	return func(c *alignConfig) {
		c.thin = true
	}
}

// thinSkipHead is how many leading predicted points are unconditionally
// dropped before the keep/drop cycle starts counting.
const (
	thinSkipHead  = 2
	thinKeepRun   = 5
	thinCycleSize = 7
)

// Align merges an observed history and a forecast into one axis.
//
// The unified label sequence is historical labels followed by predicted
// labels in original order; duplicate boundary labels are tolerated, not
// merged. The historical track never extends past observed history. When
// history is non-empty, the predicted track starts with the last
// historical value (the bridge point) so the two lines meet visually;
// with no history there is no bridge.
//
// Mismatched input lengths are reconciled by padding with absent values.
// Input that padding cannot make sense of yields an empty "no data"
// result rather than an error, so callers can render a placeholder.
func Align(histLabels []string, histValues []float64, predLabels []string, predValues []float64, opts ...Option) Aligned {
	cfg := &alignConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	// Values past their label axis have no position to render at.
	if len(histValues) > len(histLabels) || len(predValues) > len(predLabels) {
		return Aligned{}
	}

	if cfg.thin {
		predLabels, predValues = thin(predLabels, predValues)
	}

	histN := len(histLabels)
	predN := len(predLabels)
	total := histN + predN

	labels := make([]string, 0, total)
	labels = append(labels, histLabels...)
	labels = append(labels, predLabels...)

	historical := make([]*float64, total)
	for i := range histValues {
		historical[i] = ptr(histValues[i])
	}

	predicted := make([]*float64, total)
	if histN > 0 && len(histValues) == histN {
		// Bridge point: duplicate the last observed value at the
		// boundary for line continuity.
		predicted[histN-1] = ptr(histValues[histN-1])
	}
	for i := range predValues {
		predicted[histN+i] = ptr(predValues[i])
	}

	return Aligned{Labels: labels, Historical: historical, Predicted: predicted}
}

// thin applies the fixed decimation cycle to the predicted points: skip
// the first two, then repeatedly keep five and drop two. The drop slots
// of a cycle only take effect once the next cycle boundary is actually
// reached, so the tail of the forecast is never truncated. Labels and
// values are dropped together so the axis stays consistent.
func thin(labels []string, values []float64) ([]string, []float64) {
	if len(labels) <= thinSkipHead {
		return nil, nil
	}

	n := len(labels) - thinSkipHead
	outLabels := make([]string, 0, n)
	outValues := make([]float64, 0, len(values))
	for r := 0; r < n; r++ {
		if r%thinCycleSize >= thinKeepRun && n > (r/thinCycleSize+1)*thinCycleSize {
			continue
		}
		i := r + thinSkipHead
		outLabels = append(outLabels, labels[i])
		if i < len(values) {
			outValues = append(outValues, values[i])
		}
	}
	return outLabels, outValues
}

func ptr(v float64) *float64 {
	return &v
}
