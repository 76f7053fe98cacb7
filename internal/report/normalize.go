package report

import "strings"

// TrayState is the normalized rendering class for a tray status token.
type TrayState string

const (
	TrayOK      TrayState = "ok"
	TrayLow     TrayState = "low"
	TrayEmpty   TrayState = "empty"
	TrayOpen    TrayState = "open"
	TrayUnknown TrayState = "unknown"
)

// LevelBucket classifies a toner level for display emphasis.
type LevelBucket string

const (
	LevelHigh   LevelBucket = "high"
	LevelMedium LevelBucket = "medium"
	LevelLow    LevelBucket = "low"
)

// ClampLevel bounds a reported toner percentage to [0,100] for display.
// Devices report raw and occasionally out-of-range values; clamping happens
// at render time, never at ingest.
func ClampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}

// BucketLevel maps a raw toner level to its display bucket. Bucketing uses
// the raw value: >50 high, >20 medium, otherwise low.
func BucketLevel(level int) LevelBucket {
	switch {
	case level > 50:
		return LevelHigh
	case level > 20:
		return LevelMedium
	default:
		return LevelLow
	}
}

// NormalizeTrayStatus maps a free-text tray token onto a known state,
// case-insensitively. Unrecognized tokens normalize to TrayUnknown.
func NormalizeTrayStatus(status string) TrayState {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "OK", "READY":
		return TrayOK
	case "LOW", "NEARLY_EMPTY":
		return TrayLow
	case "EMPTY":
		return TrayEmpty
	case "OPEN":
		return TrayOpen
	default:
		return TrayUnknown
	}
}

// CardKey derives the stable card identifier for a device name: every
// non-alphanumeric rune becomes '-', and the result is lowercased. Two
// roster names differing only in punctuation would collide; the dashboard
// rejects such rosters at construction time.
func CardKey(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
