package usage

import "github.com/sweeney/vue-exporter/internal/vue"

// mainsChannel is the composite id Emporia assigns to the aggregate of the
// three mains phases.
const mainsChannel = "1,2,3"

// Watt conversion: a one-minute kWh sample expressed as an instantaneous rate.
const (
	minutesPerHour = 60
	wattsPerKW     = 1000.0
)

// MatchChannel resolves a usage reading to a channel of the device and
// derives the pre-sanitisation display label. The device's channel tree is
// scanned depth-first in document order; the first channel whose number
// equals the reading's channel number wins.
//
// A named channel supplies its own name. Unnamed channels fall back to
// "<device> Mains" for the mains aggregate and "<device>-<number>"
// otherwise. ok is false when no channel matches; the caller skips the
// reading.
func MatchChannel(device vue.Device, reading vue.UsageReading) (label string, multiplier float64, ok bool) {
	ch, found := findChannel(device.Channels, reading.ChannelNumber)
	if !found {
		return "", 0, false
	}

	multiplier = ch.Multiplier
	if multiplier == 0 {
		multiplier = 1.0
	}

	switch {
	case ch.Name != "":
		label = ch.Name
	case ch.Number == mainsChannel:
		label = device.Name + " Mains"
	default:
		label = device.Name + "-" + ch.Number
	}
	return label, multiplier, true
}

func findChannel(channels []vue.Channel, number string) (vue.Channel, bool) {
	for _, ch := range channels {
		if ch.Number == number {
			return ch, true
		}
		if nested, ok := findChannel(ch.Nested, number); ok {
			return nested, true
		}
	}
	return vue.Channel{}, false
}

// Watts converts a one-minute kWh usage sample into instantaneous watts.
func Watts(kwh, multiplier float64) float64 {
	return kwh * multiplier * wattsPerKW * minutesPerHour
}
