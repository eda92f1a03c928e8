package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveCall("list_file_paths", 5*time.Millisecond, nil)
	m.ObserveCall("list_file_paths", 2*time.Millisecond, errors.New("boom"))
	m.ObserveCall("read_files", time.Millisecond, nil)

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := map[string]int{}
	for _, fam := range families {
		byName[fam.GetName()] = len(fam.GetMetric())
	}

	// Two tools called, one of them errored.
	assert.Equal(t, 2, byName["filesearchd_tool_calls_total"])
	assert.Equal(t, 1, byName["filesearchd_tool_errors_total"])
	assert.Equal(t, 2, byName["filesearchd_tool_duration_seconds"])
}

func TestObserveCallNilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCall("list_file_paths", time.Millisecond, nil)
	})
}
