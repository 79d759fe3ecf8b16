package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/mkrall/gymsync/internal/domain/entities"
	"github.com/mkrall/gymsync/internal/domain/ports"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()

	r.RecordFetch("gym-1", "ok")
	r.RecordFetch("gym-1", "ok")
	r.RecordFetch("gym-1", "retry")
	r.RecordUnit("gym-1", entities.EventTypeCamp, "done", entities.ComparisonSummary{New: 3, Changed: 1})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.fetchTotal.WithLabelValues("gym-1", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetchTotal.WithLabelValues("gym-1", "retry")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.unitTotal.WithLabelValues("gym-1", "CAMP", "done")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.unitNew.WithLabelValues("gym-1", "CAMP")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.unitChanged.WithLabelValues("gym-1", "CAMP")))
}

var (
	_ ports.MetricsRecorder = (*Recorder)(nil)
	_ ports.MetricsRecorder = Nop{}
)
