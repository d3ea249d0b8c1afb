package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSetServiceUp(t *testing.T) {
	SetServiceUp(true)
	assert.Equal(t, float64(1), testutil.ToFloat64(ServiceUp))

	SetServiceUp(false)
	assert.Equal(t, float64(0), testutil.ToFloat64(ServiceUp))
}

func TestGTPPacketsTotal_LabeledCounters(t *testing.T) {
	GTPPacketsTotal.WithLabelValues("tx", "echo_response").Inc()
	before := testutil.ToFloat64(GTPPacketsTotal.WithLabelValues("tx", "echo_response"))

	GTPPacketsTotal.WithLabelValues("tx", "echo_response").Inc()
	after := testutil.ToFloat64(GTPPacketsTotal.WithLabelValues("tx", "echo_response"))

	assert.Equal(t, before+1, after)
}
