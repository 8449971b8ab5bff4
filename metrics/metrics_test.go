package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raushankrgupta/price-list-crawler/normalize"
)

var _ normalize.Sink = (*Metrics)(nil)

func TestSinkCounters(t *testing.T) {
	m := New(nil)

	m.RecordParsed("konzum")
	m.RecordParsed("konzum")
	m.RecordSkipped("konzum", "missing_field")
	m.GroupSkipped("lidl", "parse")
	m.StoreDropped("lidl")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.recordsParsed.WithLabelValues("konzum")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recordsSkipped.WithLabelValues("konzum", "missing_field")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.groupsSkipped.WithLabelValues("lidl", "parse")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storesDropped.WithLabelValues("lidl")))
}

func TestRegisteredChainRuns(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ChainRun("dm", "ok", 2*time.Second)
	m.ChainRun("dm", "failed", time.Second)

	expected := `
# HELP price_crawler_chain_runs_total Completed chain runs, by outcome.
# TYPE price_crawler_chain_runs_total counter
price_crawler_chain_runs_total{chain="dm",outcome="failed"} 1
price_crawler_chain_runs_total{chain="dm",outcome="ok"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "price_crawler_chain_runs_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(m.chainDuration))
}
