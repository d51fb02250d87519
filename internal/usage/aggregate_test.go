package usage

import (
	"testing"

	"github.com/sweeney/vue-exporter/internal/vue"
)

func TestAggregateDevices_DistinctGIDs(t *testing.T) {
	raw := []vue.Device{
		{GID: 1, Name: "Main Panel", Channels: []vue.Channel{{Number: "1,2,3"}}},
		{GID: 2, Name: "Garage", Channels: []vue.Channel{{Number: "1"}}},
	}
	got := AggregateDevices(raw)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[1].Name != "Main Panel" || got[2].Name != "Garage" {
		t.Errorf("names = %q, %q", got[1].Name, got[2].Name)
	}
}

// TestAggregateDevices_MergeLaw: two records sharing a gid with m and n
// channels merge into one record with m+n channels; the first record's
// other fields win.
func TestAggregateDevices_MergeLaw(t *testing.T) {
	raw := []vue.Device{
		{GID: 7, Name: "Main Panel", Channels: []vue.Channel{{Number: "1"}, {Number: "2"}}},
		{GID: 7, Name: "Renamed Later", Channels: []vue.Channel{{Number: "3"}, {Number: "4"}, {Number: "5"}}},
	}
	got := AggregateDevices(raw)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	dev := got[7]
	if len(dev.Channels) != 5 {
		t.Errorf("channels = %d, want 5 (2+3)", len(dev.Channels))
	}
	if dev.Name != "Main Panel" {
		t.Errorf("Name = %q, want first-seen %q", dev.Name, "Main Panel")
	}
	// Channels append in arrival order.
	want := []string{"1", "2", "3", "4", "5"}
	for i, ch := range dev.Channels {
		if ch.Number != want[i] {
			t.Errorf("channel[%d] = %q, want %q", i, ch.Number, want[i])
		}
	}
}

func TestAggregateDevices_EmptyChannels(t *testing.T) {
	got := AggregateDevices([]vue.Device{{GID: 9, Name: "Bare"}})
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if len(got[9].Channels) != 0 {
		t.Errorf("channels = %d, want 0", len(got[9].Channels))
	}
}

func TestAggregateDevices_InputUntouched(t *testing.T) {
	first := vue.Device{GID: 7, Channels: []vue.Channel{{Number: "1"}}}
	raw := []vue.Device{first, {GID: 7, Channels: []vue.Channel{{Number: "2"}}}}
	_ = AggregateDevices(raw)
	if len(first.Channels) != 1 {
		t.Errorf("caller's record mutated: %d channels", len(first.Channels))
	}
}
