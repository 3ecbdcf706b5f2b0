package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue reads a counter from the default registry; label is matched
// against the first label value when set.
func counterValue(t *testing.T, name, label string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if label != "" && (len(m.GetLabel()) == 0 || m.GetLabel()[0].GetValue() != label) {
				continue
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestCounters(t *testing.T) {
	Register()
	Register()

	before := counterValue(t, "slotbook_slot_checks_total", "available")
	IncSlotCheck("")
	assert.Equal(t, before+1, counterValue(t, "slotbook_slot_checks_total", "available"))

	before = counterValue(t, "slotbook_cache_lookups_total", "hit")
	IncCacheHit()
	assert.Equal(t, before+1, counterValue(t, "slotbook_cache_lookups_total", "hit"))

	before = counterValue(t, "slotbook_grids_computed_total", "")
	ObserveCompute(3 * time.Millisecond)
	assert.Equal(t, before+1, counterValue(t, "slotbook_grids_computed_total", ""))
}
