package memo

import (
	"github.com/prometheus/client_golang/prometheus"
)

type StatsSource interface {
	Stats() Stats
}

// Collector exports cache counters, one label value per cache name.
type Collector struct {
	sources []StatsSource

	hits         *prometheus.Desc
	misses       *prometheus.Desc
	computations *prometheus.Desc
	evictions    *prometheus.Desc
	entries      *prometheus.Desc
}

func NewCollector(namespace string, sources ...StatsSource) *Collector {
	labels := []string{"cache"}
	return &Collector{
		sources: sources,
		hits: prometheus.NewDesc(prometheus.BuildFQName(namespace, "memo", "hits_total"),
			"Number of cache lookups served from the cache.", labels, nil),
		misses: prometheus.NewDesc(prometheus.BuildFQName(namespace, "memo", "misses_total"),
			"Number of cache lookups that missed.", labels, nil),
		computations: prometheus.NewDesc(prometheus.BuildFQName(namespace, "memo", "computations_total"),
			"Number of values computed from raw data.", labels, nil),
		evictions: prometheus.NewDesc(prometheus.BuildFQName(namespace, "memo", "evictions_total"),
			"Number of entries evicted from bounded caches.", labels, nil),
		entries: prometheus.NewDesc(prometheus.BuildFQName(namespace, "memo", "entries"),
			"Number of entries currently cached.", labels, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.computations
	ch <- c.evictions
	ch <- c.entries
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, source := range c.sources {
		stats := source.Stats()
		ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(stats.Hits), stats.Name)
		ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(stats.Misses), stats.Name)
		ch <- prometheus.MustNewConstMetric(c.computations, prometheus.CounterValue, float64(stats.Computations), stats.Name)
		ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(stats.Evictions), stats.Name)
		ch <- prometheus.MustNewConstMetric(c.entries, prometheus.GaugeValue, float64(stats.Entries), stats.Name)
	}
}
