package sink

import "github.com/prometheus/client_golang/prometheus"

// PromSink exposes samples as the per_min_usage_total_watt gauge. GaugeVec
// is safe for concurrent use, so scrape handlers may read while the poll
// worker writes. Label sets accumulate for the process lifetime; Prometheus
// expects stable series across scrapes.
type PromSink struct {
	gauge *prometheus.GaugeVec
}

// NewPromSink creates the gauge and registers it with reg.
func NewPromSink(reg prometheus.Registerer) *PromSink {
	g := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "per_min_usage_total_watt",
			Help: "Total usage for channel in watts.",
		},
		[]string{"channel_name", "channel_num", "device_name", "device_gid"},
	)
	reg.MustRegister(g)
	return &PromSink{gauge: g}
}

// Record upserts the gauge value for the sample's label tuple.
func (p *PromSink) Record(s Sample) {
	p.gauge.WithLabelValues(s.ChannelName, s.ChannelNumber, s.DeviceName, s.GIDLabel()).Set(s.Watts)
}
