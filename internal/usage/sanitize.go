// Package usage provides pure functions over the Vue device model: label
// sanitisation, device aggregation, channel matching and the kWh→watt
// conversion. There is no I/O and no side effects; all functions are safe
// to call from any goroutine.
package usage

import "strings"

// SanitizeLabel normalises an arbitrary display name into a metric-safe
// identifier: lowercase, with every run of characters outside [a-z0-9_]
// collapsed to a single underscore. Idempotent over any string.
func SanitizeLabel(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	inRun := false
	for _, r := range strings.ToLower(name) {
		safe := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_'
		if safe && r != '_' {
			b.WriteRune(r)
			inRun = false
			continue
		}
		// '_' and every unsafe rune both extend the current run.
		if !inRun {
			b.WriteByte('_')
			inRun = true
		}
	}
	return b.String()
}
