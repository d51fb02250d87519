package vue

import (
	"context"
	"time"
)

// Channel is a single sub-meter or phase within a device. Number is the
// Emporia channel identifier — usually a numeric string, but the mains
// aggregate uses the composite id "1,2,3". Nested holds the channels of
// sub-devices hanging off this channel (e.g. a Vue hub port).
type Channel struct {
	Number     string
	Name       string
	Multiplier float64
	Nested     []Channel
}

// Device is one monitored panel or plug as reported by the listing call.
// The raw listing may contain several records for the same GID (pagination,
// duplicated hub entries); callers merge them before use.
type Device struct {
	GID      int
	Name     string
	Channels []Channel
}

// UsageReading is one channel's energy usage over the sampled window.
// KWH is nil when the API reports no value for the channel; such readings
// produce no metric.
type UsageReading struct {
	DeviceGID     int
	ChannelNumber string
	KWH           *float64
}

// Client abstracts the Emporia cloud API so the polling engine can be
// tested against a fake without any network dependency.
type Client interface {
	// Login establishes (or re-establishes) a session. Failures are
	// reported as *AuthError.
	Login(ctx context.Context, username, password string) error
	// ListDevices returns the raw device records, duplicates included.
	ListDevices(ctx context.Context) ([]Device, error)
	// GetUsage returns one minute of per-channel usage for the device,
	// sampled at instant.
	GetUsage(ctx context.Context, deviceGID int, instant time.Time) ([]UsageReading, error)
}
