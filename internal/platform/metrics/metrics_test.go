package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.ObserveRequest("/voter-data/{id}", "GET", 200, time.Now())
	m.ObserveRequest("/voter-data/{id}", "GET", 200, time.Now())
	m.ObserveRequest("/voter-data/{id}", "GET", 404, time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/voter-data/{id}", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/voter-data/{id}", "GET", "404")))
}
