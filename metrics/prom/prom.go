// Package prom exports cache metrics to Prometheus.
//
// Adapter plugs into cache.Options.Metrics and is updated on every cache
// operation. StatsCollector is the pull-style alternative: it reads
// cache.Stats at scrape time and suits caches built without an adapter.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/uicore/cache"
)

// Adapter implements cache.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits     prometheus.Counter
	misses   prometheus.Counter
	evicts   *prometheus.CounterVec
	sizeEnt  prometheus.Gauge
	sizeCost prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	opts := func(name, help string) prometheus.Opts {
		return prometheus.Opts{Namespace: ns, Subsystem: sub, Name: name, Help: help, ConstLabels: constLabels}
	}
	a := &Adapter{
		hits:     prometheus.NewCounter(prometheus.CounterOpts(opts("hits_total", "Cache hits"))),
		misses:   prometheus.NewCounter(prometheus.CounterOpts(opts("misses_total", "Cache misses"))),
		evicts:   prometheus.NewCounterVec(prometheus.CounterOpts(opts("evictions_total", "Cache evictions by reason (capacity, cost, age)")), []string{"reason"}),
		sizeEnt:  prometheus.NewGauge(prometheus.GaugeOpts(opts("size_entries", "Number of resident entries across all shards"))),
		sizeCost: prometheus.NewGauge(prometheus.GaugeOpts(opts("size_cost", "Total resident cost across all shards"))),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.sizeEnt, a.sizeCost)

	// Pre-create the reason series so dashboards see zeros, not gaps.
	for _, r := range []cache.EvictReason{cache.EvictCapacity, cache.EvictCost, cache.EvictAge} {
		a.evicts.WithLabelValues(r.String())
	}
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter with a reason label.
func (a *Adapter) Evict(r cache.EvictReason) {
	a.evicts.WithLabelValues(r.String()).Inc()
}

// Size updates gauges for the number of entries and total cost.
func (a *Adapter) Size(entries int, cost int64) {
	a.sizeEnt.Set(float64(entries))
	a.sizeCost.Set(float64(cost))
}

// Compile-time check: ensure Adapter implements cache.Metrics.
var _ cache.Metrics = (*Adapter)(nil)

// StatsCollector reports a cache's Stats at scrape time.
type StatsCollector struct {
	stats func() cache.Stats

	hits, misses, evictions *prometheus.Desc
	entries, cost, ratio    *prometheus.Desc
}

// NewStatsCollector returns a collector reading stats on every scrape,
// typically a cache's Stats method value. Register it yourself.
func NewStatsCollector(ns, sub string, constLabels prometheus.Labels, stats func() cache.Stats) *StatsCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(ns, sub, name), help, nil, constLabels)
	}
	return &StatsCollector{
		stats:     stats,
		hits:      desc("hits_total", "Cache hits"),
		misses:    desc("misses_total", "Cache misses"),
		evictions: desc("evictions_total", "Cache evictions, all reasons"),
		entries:   desc("size_entries", "Number of resident entries across all shards"),
		cost:      desc("size_cost", "Total resident cost across all shards"),
		ratio:     desc("hit_ratio", "Hits over lookups since start"),
	}
}

// Describe implements prometheus.Collector.
func (c *StatsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{c.hits, c.misses, c.evictions, c.entries, c.cost, c.ratio} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *StatsCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.stats()
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(st.Hits))
	ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(st.Misses))
	ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(st.Evictions))
	ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(st.Len))
	ch <- prometheus.MustNewConstMetric(c.cost, prometheus.GaugeValue, float64(st.Cost))
	ch <- prometheus.MustNewConstMetric(c.ratio, prometheus.GaugeValue, st.HitRatio())
}

var _ prometheus.Collector = (*StatsCollector)(nil)
