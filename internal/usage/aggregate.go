package usage

import "github.com/sweeney/vue-exporter/internal/vue"

// AggregateDevices merges raw device records into one record per gid.
// The listing API may return the same device more than once (pagination,
// hub sub-device duplication); repeated records contribute their channels
// to the first-seen record, whose other fields win. Callers therefore
// never need to pre-deduplicate.
func AggregateDevices(raw []vue.Device) map[int]vue.Device {
	out := make(map[int]vue.Device, len(raw))
	for _, d := range raw {
		seen, ok := out[d.GID]
		if !ok {
			out[d.GID] = d
			continue
		}
		seen.Channels = append(seen.Channels, d.Channels...)
		out[d.GID] = seen
	}
	return out
}
