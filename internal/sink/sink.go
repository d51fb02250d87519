// Package sink receives the per-channel wattage samples produced by a poll
// cycle. Implementations upsert the latest value per label set: the
// Prometheus gauge for scraping, an optional MQTT republisher, and a
// recording fake for tests.
package sink

import "strconv"

// Sample is the latest wattage for one channel. The four identity fields
// form the label tuple; repeated Records for the same tuple overwrite.
type Sample struct {
	ChannelName   string // sanitised display label
	ChannelNumber string
	DeviceName    string
	DeviceGID     int
	Watts         float64
}

// GIDLabel renders the device gid the way it appears in metric labels and
// topics.
func (s Sample) GIDLabel() string {
	return strconv.Itoa(s.DeviceGID)
}

// Recorder accepts samples. Record must be safe for concurrent use with
// readers of the underlying store and must never fail the caller's cycle.
type Recorder interface {
	Record(s Sample)
}

// Multi fans a sample out to several recorders in order.
type Multi []Recorder

// Record forwards the sample to every recorder.
func (m Multi) Record(s Sample) {
	for _, r := range m {
		r.Record(s)
	}
}
