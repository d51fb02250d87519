package sink

import "sync"

// Fake records every sample so tests can inspect them. Safe for concurrent
// use, matching the Recorder contract.
type Fake struct {
	mu      sync.Mutex
	Samples []Sample
}

// Record appends the sample to the recorded list.
func (f *Fake) Record(s Sample) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Samples = append(f.Samples, s)
}

// Find returns the last recorded sample for the channel-name label, plus a
// found bool. Last wins, mirroring gauge upsert semantics.
func (f *Fake) Find(channelName string) (Sample, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.Samples) - 1; i >= 0; i-- {
		if f.Samples[i].ChannelName == channelName {
			return f.Samples[i], true
		}
	}
	return Sample{}, false
}

// Len returns the number of recorded samples.
func (f *Fake) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Samples)
}

// Reset clears all recorded state so the fake can be reused between sub-tests.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Samples = nil
}
