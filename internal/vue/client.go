package vue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.emporiaenergy.com"

// HTTPClient talks to the Emporia cloud API and implements Client.
// Login stores a session token; every other call sends it in the authtoken
// header. A 401/403 on any call surfaces as *AuthError so the scheduler
// can force a re-login.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	token   string
}

// NewHTTPClient returns a client for the given API base URL. An empty
// baseURL selects the production endpoint.
func NewHTTPClient(baseURL string) *HTTPClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// --- wire formats -----------------------------------------------------------

type tokenResponse struct {
	IDToken string `json:"idToken"`
}

type wireChannel struct {
	ChannelNum        string       `json:"channelNum"`
	Name              *string      `json:"name"`
	ChannelMultiplier float64      `json:"channelMultiplier"`
	NestedDevices     []wireDevice `json:"nestedDevices"`
}

type wireDevice struct {
	DeviceGID          int `json:"deviceGid"`
	LocationProperties struct {
		DeviceName string `json:"deviceName"`
	} `json:"locationProperties"`
	Channels []wireChannel `json:"channels"`
	Devices  []wireDevice  `json:"devices"`
}

type devicesResponse struct {
	Devices []wireDevice `json:"devices"`
}

type wireChannelUsage struct {
	ChannelNum    string            `json:"channelNum"`
	Usage         *float64          `json:"usage"`
	NestedDevices []wireDeviceUsage `json:"nestedDevices"`
}

type wireDeviceUsage struct {
	DeviceGID     int                `json:"deviceGid"`
	ChannelUsages []wireChannelUsage `json:"channelUsages"`
}

type usageResponse struct {
	DeviceListUsages struct {
		Devices []wireDeviceUsage `json:"devices"`
	} `json:"deviceListUsages"`
}

// --- Client implementation --------------------------------------------------

// Login exchanges credentials for a session token.
func (c *HTTPClient) Login(ctx context.Context, username, password string) error {
	const endpoint = "/auth/tokens"

	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return &AuthError{Endpoint: endpoint, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return &AuthError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &AuthError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return &AuthError{Endpoint: endpoint, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return &AuthError{Endpoint: endpoint, Err: fmt.Errorf("decoding token response: %w", err)}
	}
	if tok.IDToken == "" {
		return &AuthError{Endpoint: endpoint, Err: fmt.Errorf("empty token in response")}
	}
	c.token = tok.IDToken
	return nil
}

// ListDevices fetches the raw device records. Sub-devices listed under a
// parent are returned as additional top-level records (they carry their own
// gid); channel-level nested devices become the channel's Nested list.
func (c *HTTPClient) ListDevices(ctx context.Context) ([]Device, error) {
	const endpoint = "/customers/devices"

	var dr devicesResponse
	if err := c.get(ctx, endpoint, &dr); err != nil {
		return nil, err
	}

	var out []Device
	var walk func(wd wireDevice)
	walk = func(wd wireDevice) {
		out = append(out, Device{
			GID:      wd.DeviceGID,
			Name:     wd.LocationProperties.DeviceName,
			Channels: mapChannels(wd.Channels),
		})
		for _, sub := range wd.Devices {
			walk(sub)
		}
	}
	for _, wd := range dr.Devices {
		walk(wd)
	}
	return out, nil
}

// GetUsage fetches one minute of usage for the device. Nested channel
// usages are flattened depth-first; each level keeps its own device gid.
func (c *HTTPClient) GetUsage(ctx context.Context, deviceGID int, instant time.Time) ([]UsageReading, error) {
	endpoint := "/AppAPI?" + url.Values{
		"apiMethod":  {"getDeviceListUsage"},
		"deviceGids": {fmt.Sprint(deviceGID)},
		"instant":    {instant.UTC().Format(time.RFC3339)},
		"scale":      {"1MIN"},
		"energyUnit": {"KilowattHours"},
	}.Encode()

	var ur usageResponse
	if err := c.get(ctx, endpoint, &ur); err != nil {
		return nil, err
	}

	var out []UsageReading
	var walk func(du wireDeviceUsage)
	walk = func(du wireDeviceUsage) {
		for _, cu := range du.ChannelUsages {
			out = append(out, UsageReading{
				DeviceGID:     du.DeviceGID,
				ChannelNumber: cu.ChannelNum,
				KWH:           cu.Usage,
			})
			for _, nested := range cu.NestedDevices {
				walk(nested)
			}
		}
	}
	for _, du := range ur.DeviceListUsages.Devices {
		walk(du)
	}
	return out, nil
}

// get issues an authenticated GET and decodes the JSON body into dst.
func (c *HTTPClient) get(ctx context.Context, endpoint string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return &APIError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("authtoken", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{Endpoint: endpoint, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		// Read a little of the body for context; APIs often explain 4xx/5xx.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint, Err: fmt.Errorf("%s", snippet)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

func mapChannels(wire []wireChannel) []Channel {
	if len(wire) == 0 {
		return nil
	}
	out := make([]Channel, len(wire))
	for i, wc := range wire {
		ch := Channel{
			Number:     wc.ChannelNum,
			Multiplier: wc.ChannelMultiplier,
		}
		if wc.Name != nil {
			ch.Name = *wc.Name
		}
		for _, nd := range wc.NestedDevices {
			ch.Nested = append(ch.Nested, mapChannels(nd.Channels)...)
		}
		out[i] = ch
	}
	return out
}
