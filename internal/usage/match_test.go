package usage

import (
	"testing"

	"github.com/sweeney/vue-exporter/internal/vue"
)

var mainPanel = vue.Device{
	GID:  1000,
	Name: "Main Panel",
	Channels: []vue.Channel{
		{Number: "1,2,3", Multiplier: 1.0},
		{Number: "4", Name: "Dryer", Multiplier: 2.0},
		{Number: "7", Multiplier: 1.0},
		{Number: "9", Name: "Hub", Multiplier: 1.0, Nested: []vue.Channel{
			{Number: "9.1", Name: "Office Plug", Multiplier: 1.0},
		}},
	},
}

func reading(num string) vue.UsageReading {
	return vue.UsageReading{DeviceGID: mainPanel.GID, ChannelNumber: num}
}

func TestMatchChannel_NamedChannel(t *testing.T) {
	label, mult, ok := MatchChannel(mainPanel, reading("4"))
	if !ok {
		t.Fatal("expected a match for channel 4")
	}
	if label != "Dryer" {
		t.Errorf("label = %q, want %q", label, "Dryer")
	}
	if mult != 2.0 {
		t.Errorf("multiplier = %v, want 2.0", mult)
	}
}

// An unnamed "1,2,3" channel is the mains aggregate.
func TestMatchChannel_MainsFallback(t *testing.T) {
	label, _, ok := MatchChannel(mainPanel, reading("1,2,3"))
	if !ok {
		t.Fatal("expected a match for the mains channel")
	}
	if label != "Main Panel Mains" {
		t.Errorf("label = %q, want %q", label, "Main Panel Mains")
	}
	if got := SanitizeLabel(label); got != "main_panel_mains" {
		t.Errorf("sanitised = %q, want %q", got, "main_panel_mains")
	}
}

func TestMatchChannel_DefaultNaming(t *testing.T) {
	label, _, ok := MatchChannel(mainPanel, reading("7"))
	if !ok {
		t.Fatal("expected a match for channel 7")
	}
	if label != "Main Panel-7" {
		t.Errorf("label = %q, want %q", label, "Main Panel-7")
	}
	if got := SanitizeLabel(label); got != "main_panel_7" {
		t.Errorf("sanitised = %q, want %q", got, "main_panel_7")
	}
}

func TestMatchChannel_NoMatch(t *testing.T) {
	if _, _, ok := MatchChannel(mainPanel, reading("99")); ok {
		t.Error("expected no match for channel 99")
	}
}

// Nested sub-device channels are reachable through the parent channel.
func TestMatchChannel_Nested(t *testing.T) {
	label, _, ok := MatchChannel(mainPanel, reading("9.1"))
	if !ok {
		t.Fatal("expected a match for nested channel 9.1")
	}
	if label != "Office Plug" {
		t.Errorf("label = %q, want %q", label, "Office Plug")
	}
}

// A zero multiplier from the API means "unset" and is treated as 1.
func TestMatchChannel_ZeroMultiplier(t *testing.T) {
	dev := vue.Device{Name: "Garage", Channels: []vue.Channel{{Number: "1", Name: "Opener"}}}
	_, mult, ok := MatchChannel(dev, vue.UsageReading{ChannelNumber: "1"})
	if !ok {
		t.Fatal("expected a match")
	}
	if mult != 1.0 {
		t.Errorf("multiplier = %v, want 1.0", mult)
	}
}

// Watts: one minute of energy expressed at an hourly rate.
func TestWatts(t *testing.T) {
	if got := Watts(0.01, 1.0); got != 600.0 {
		t.Errorf("Watts(0.01, 1.0) = %v, want 600.0", got)
	}
	if got := Watts(0.01, 2.0); got != 1200.0 {
		t.Errorf("Watts(0.01, 2.0) = %v, want 1200.0", got)
	}
	if got := Watts(0, 1.0); got != 0 {
		t.Errorf("Watts(0, 1.0) = %v, want 0", got)
	}
}
