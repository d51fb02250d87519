package vue

import (
	"context"
	"fmt"
	"time"
)

// FakeClient is a test double for Client.
//
// Seed Devices and Usage before use. Each error field injects a failure on
// every call of the corresponding method; LoginErrs injects failures for the
// first len(LoginErrs) Login calls only, so tests can script "fail once,
// then succeed" sequences.
type FakeClient struct {
	Devices []Device
	Usage   map[int][]UsageReading

	LoginErr   error
	LoginErrs  []error
	ListErr    error
	UsageErr   error
	UsageErrAt int // if > 0, fail the Nth GetUsage call instead of all

	LoginCalls int
	ListCalls  int
	UsageCalls int

	LastUsername string
	LastInstant  time.Time
}

// Login records the credentials and returns the scripted error, if any.
func (f *FakeClient) Login(ctx context.Context, username, password string) error {
	f.LoginCalls++
	f.LastUsername = username
	if len(f.LoginErrs) > 0 {
		err := f.LoginErrs[0]
		f.LoginErrs = f.LoginErrs[1:]
		return err
	}
	return f.LoginErr
}

// ListDevices returns a copy of the seeded device records.
func (f *FakeClient) ListDevices(ctx context.Context) ([]Device, error) {
	f.ListCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]Device, len(f.Devices))
	copy(out, f.Devices)
	return out, nil
}

// GetUsage returns the seeded readings for the device gid.
func (f *FakeClient) GetUsage(ctx context.Context, deviceGID int, instant time.Time) ([]UsageReading, error) {
	f.UsageCalls++
	f.LastInstant = instant
	if f.UsageErr != nil && (f.UsageErrAt == 0 || f.UsageErrAt == f.UsageCalls) {
		return nil, f.UsageErr
	}
	readings, ok := f.Usage[deviceGID]
	if !ok {
		return nil, &APIError{Endpoint: fmt.Sprintf("usage/%d", deviceGID), Err: fmt.Errorf("no usage seeded for device %d", deviceGID)}
	}
	out := make([]UsageReading, len(readings))
	copy(out, readings)
	return out, nil
}

// Reset clears all state so the fake can be reused between sub-tests.
func (f *FakeClient) Reset() {
	*f = FakeClient{}
}
