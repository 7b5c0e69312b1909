package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDiscoveryCounters(t *testing.T) {
	before := testutil.ToFloat64(DiscoveryCreated.WithLabelValues("twitch", "category"))
	DiscoveryCreated.WithLabelValues("twitch", "category").Add(3)
	assert.Equal(t, before+3, testutil.ToFloat64(DiscoveryCreated.WithLabelValues("twitch", "category")))
}

func TestQueueGauges(t *testing.T) {
	QueueJobs.WithLabelValues("waiting").Set(7)
	assert.Equal(t, float64(7), testutil.ToFloat64(QueueJobs.WithLabelValues("waiting")))
}
