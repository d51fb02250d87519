// Package poller drives the poll/retry state machine: authenticate when
// needed, run one fetch-aggregate-match-record cycle per interval, and back
// off with a forced re-login after any mid-cycle failure.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/sweeney/vue-exporter/internal/config"
	"github.com/sweeney/vue-exporter/internal/sink"
	"github.com/sweeney/vue-exporter/internal/usage"
	"github.com/sweeney/vue-exporter/internal/vue"
)

// State is the scheduler's position in its cycle.
type State int

const (
	StateIdle State = iota
	StateAuthenticating
	StatePolling
	StateScheduledRetry // short backoff after a failure, re-login pending
	StateScheduledNext  // normal interval wait
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAuthenticating:
		return "authenticating"
	case StatePolling:
		return "polling"
	case StateScheduledRetry:
		return "scheduled-retry"
	case StateScheduledNext:
		return "scheduled-next"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// ErrInitialLogin marks an authentication failure before any login has ever
// succeeded. No session can be established, so main exits instead of
// retrying forever.
var ErrInitialLogin = errors.New("initial login failed")

// Step describes what the scheduler does after a cycle or login attempt:
// which wait state it enters, for how long, and whether it re-authenticates
// when the timer fires.
type Step struct {
	State   State
	Delay   time.Duration
	Relogin bool
}

// NextStep maps a cycle outcome to the following step. Any failure, auth
// or API, takes the short backoff with a forced re-login on the assumption
// the session may have expired. Success waits the full interval and goes
// straight back to polling.
func NextStep(err error, interval, backoff time.Duration) Step {
	if err != nil {
		return Step{State: StateScheduledRetry, Delay: backoff, Relogin: true}
	}
	return Step{State: StateScheduledNext, Delay: interval, Relogin: false}
}

// Resume maps a fired wait timer to the next active state.
func Resume(relogin bool) State {
	if relogin {
		return StateAuthenticating
	}
	return StatePolling
}

// Scheduler owns the poll loop. A single Run goroutine is the only writer
// of its state and of each cycle's device working set; the sink is the only
// shared surface.
type Scheduler struct {
	client   vue.Client
	recorder sink.Recorder

	username string
	password string

	interval time.Duration
	backoff  time.Duration
	usageLag time.Duration
	excluded map[string]bool

	now func() time.Time

	state        State
	loggedInOnce bool
}

// New builds a scheduler from the Vue section of the config.
func New(client vue.Client, recorder sink.Recorder, cfg config.VueConfig) *Scheduler {
	excluded := make(map[string]bool, len(cfg.ExcludedChannels))
	for _, ch := range cfg.ExcludedChannels {
		excluded[ch] = true
	}
	return &Scheduler{
		client:   client,
		recorder: recorder,
		username: cfg.Username,
		password: cfg.Password,
		interval: cfg.PollInterval.Duration,
		backoff:  cfg.RetryBackoff.Duration,
		usageLag: cfg.UsageLag.Duration,
		excluded: excluded,
		now:      time.Now,
		state:    StateIdle,
	}
}

// State reports the scheduler's current position. Run is the only writer;
// read it from tests or after Run returns.
func (s *Scheduler) State() State {
	return s.state
}

// Run loops until ctx is cancelled. The first launch always authenticates;
// an authentication failure before any success returns ErrInitialLogin.
// Every later failure is absorbed by the retry backoff. A pending wait
// timer is stopped on cancellation so no further cycle fires.
func (s *Scheduler) Run(ctx context.Context) error {
	relogin := true

	for {
		if ctx.Err() != nil {
			s.state = StateStopped
			return nil
		}

		if relogin {
			s.state = StateAuthenticating
			if err := s.client.Login(ctx, s.username, s.password); err != nil {
				if !s.loggedInOnce {
					s.state = StateStopped
					return fmt.Errorf("%w: %v", ErrInitialLogin, err)
				}
				log.Printf("poller: login failed: %v — retrying in %s", err, s.backoff)
				s.state = StateScheduledRetry
				if !s.wait(ctx, s.backoff) {
					s.state = StateStopped
					return nil
				}
				continue // relogin stays set
			}
			s.loggedInOnce = true
			log.Printf("poller: logged in")
		}

		s.state = StatePolling
		err := s.RunCycle(ctx)
		step := NextStep(err, s.interval, s.backoff)
		if err != nil {
			log.Printf("poller: poll failed: %v — restarting with re-login in %s", err, step.Delay)
		} else {
			log.Printf("poller: finished polling run; next run in %s", step.Delay)
		}

		s.state = step.State
		if !s.wait(ctx, step.Delay) {
			s.state = StateStopped
			return nil
		}
		relogin = step.Relogin
	}
}

// wait sleeps for d, stopping early on cancellation. It reports whether the
// timer fired (false means the context was cancelled).
func (s *Scheduler) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// RunCycle performs one complete fetch-aggregate-match-record pass. Any
// list or usage error aborts the cycle and discards its samples; nothing is
// partially committed. Per-reading problems (excluded or unmatched
// channels, absent usage values) only skip that reading.
func (s *Scheduler) RunCycle(ctx context.Context) error {
	raw, err := s.client.ListDevices(ctx)
	if err != nil {
		return fmt.Errorf("listing devices: %w", err)
	}

	devices := usage.AggregateDevices(raw)
	log.Printf("poller: found %d devices", len(devices))

	// Ask for the minute ending slightly in the past so the service has
	// had time to settle the sample.
	instant := s.now().Add(-s.usageLag)

	var samples []sink.Sample
	for _, gid := range sortedGIDs(devices) {
		readings, err := s.client.GetUsage(ctx, gid, instant)
		if err != nil {
			return fmt.Errorf("fetching usage for device %d: %w", gid, err)
		}
		for _, r := range readings {
			if sample, ok := s.resolveReading(devices, gid, r); ok {
				samples = append(samples, sample)
			}
		}
	}

	// Commit only after the whole cycle succeeded.
	for _, sample := range samples {
		s.recorder.Record(sample)
	}
	return nil
}

// resolveReading turns one usage reading into a sample, or reports false
// when the exclusion/match/null rules drop it.
func (s *Scheduler) resolveReading(devices map[int]vue.Device, fetchedGID int, r vue.UsageReading) (sink.Sample, bool) {
	if s.excluded[r.ChannelNumber] {
		return sink.Sample{}, false
	}

	// Nested sub-device readings carry their own gid; match against that
	// device's record when the listing produced one.
	device, ok := devices[r.DeviceGID]
	if !ok {
		device = devices[fetchedGID]
	}

	label, multiplier, ok := usage.MatchChannel(device, r)
	if !ok {
		log.Printf("poller: device %d %q has no channel %q; skipping reading", device.GID, device.Name, r.ChannelNumber)
		return sink.Sample{}, false
	}
	if r.KWH == nil {
		return sink.Sample{}, false
	}

	return sink.Sample{
		ChannelName:   usage.SanitizeLabel(label),
		ChannelNumber: r.ChannelNumber,
		DeviceName:    device.Name,
		DeviceGID:     device.GID,
		Watts:         usage.Watts(*r.KWH, multiplier),
	}, true
}

func sortedGIDs(devices map[int]vue.Device) []int {
	gids := make([]int, 0, len(devices))
	for gid := range devices {
		gids = append(gids, gid)
	}
	sort.Ints(gids)
	return gids
}
