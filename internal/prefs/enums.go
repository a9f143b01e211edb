package prefs

import (
	"fmt"
	"strings"
	"time"
)

// RefreshInterval is how often the displayed factlet may change.
type RefreshInterval string

const (
	Hourly  RefreshInterval = "hourly"
	HalfDay RefreshInterval = "half-day"
	Daily   RefreshInterval = "daily"
)

// RefreshIntervals lists the supported intervals, shortest first.
func RefreshIntervals() []RefreshInterval {
	return []RefreshInterval{Hourly, HalfDay, Daily}
}

func (r RefreshInterval) Duration() time.Duration {
	switch r {
	case HalfDay:
		return 12 * time.Hour
	case Daily:
		return 24 * time.Hour
	default:
		return time.Hour
	}
}

func (r RefreshInterval) DisplayName() string {
	switch r {
	case HalfDay:
		return "Twice a day"
	case Daily:
		return "Daily"
	default:
		return "Hourly"
	}
}

// legacyIntervals maps tags written by older schema versions. Retired
// options collapse into the nearest supported one.
var legacyIntervals = map[string]RefreshInterval{
	"15 Minutes": Hourly,
	"30 Minutes": Hourly,
	"Hourly":     Hourly,
	"Daily":      Daily,
}

// ParseRefreshInterval accepts canonical tags, display names and legacy tags.
func ParseRefreshInterval(s string) (RefreshInterval, error) {
	if r, ok := legacyIntervals[s]; ok {
		return r, nil
	}
	v := strings.ToLower(strings.TrimSpace(s))
	for _, r := range RefreshIntervals() {
		if v == string(r) || v == strings.ToLower(r.DisplayName()) {
			return r, nil
		}
	}
	switch v {
	case "1h", "hour":
		return Hourly, nil
	case "12h", "twice-daily":
		return HalfDay, nil
	case "24h", "day":
		return Daily, nil
	}
	return "", fmt.Errorf("unknown refresh interval %q (valid: hourly, half-day, daily)", s)
}

// TextColor is the foreground used when rendering the factlet.
type TextColor string

const (
	Light TextColor = "light"
	Dark  TextColor = "dark"
)

func TextColors() []TextColor { return []TextColor{Dark, Light} }

func ParseTextColor(s string) (TextColor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light":
		return Light, nil
	case "dark":
		return Dark, nil
	}
	return "", fmt.Errorf("unknown text color %q (valid: light, dark)", s)
}

func (c TextColor) DisplayName() string {
	if c == Light {
		return "Light"
	}
	return "Dark"
}

// NotificationFrequency is the cadence of scheduled notifications.
type NotificationFrequency string

const (
	NotifyOff           NotificationFrequency = "off"
	NotifyHourly        NotificationFrequency = "hourly"
	NotifyEveryThreeHrs NotificationFrequency = "every-3-hours"
	NotifyEverySixHrs   NotificationFrequency = "every-6-hours"
	NotifyTwiceDaily    NotificationFrequency = "twice-daily"
	NotifyDaily         NotificationFrequency = "daily"
)

func NotificationFrequencies() []NotificationFrequency {
	return []NotificationFrequency{NotifyOff, NotifyHourly, NotifyEveryThreeHrs, NotifyEverySixHrs, NotifyTwiceDaily, NotifyDaily}
}

// Duration is zero for NotifyOff.
func (f NotificationFrequency) Duration() time.Duration {
	switch f {
	case NotifyHourly:
		return time.Hour
	case NotifyEveryThreeHrs:
		return 3 * time.Hour
	case NotifyEverySixHrs:
		return 6 * time.Hour
	case NotifyTwiceDaily:
		return 12 * time.Hour
	case NotifyDaily:
		return 24 * time.Hour
	default:
		return 0
	}
}

func (f NotificationFrequency) Off() bool { return f.Duration() == 0 }

func (f NotificationFrequency) DisplayName() string {
	switch f {
	case NotifyHourly:
		return "Hourly"
	case NotifyEveryThreeHrs:
		return "Every 3 hours"
	case NotifyEverySixHrs:
		return "Every 6 hours"
	case NotifyTwiceDaily:
		return "Twice daily"
	case NotifyDaily:
		return "Daily"
	default:
		return "Off"
	}
}

// Description is a short hint shown next to the option.
func (f NotificationFrequency) Description() string {
	switch f {
	case NotifyHourly:
		return "~24 factlets per day"
	case NotifyEveryThreeHrs:
		return "~8 factlets per day"
	case NotifyEverySixHrs:
		return "~4 factlets per day"
	case NotifyTwiceDaily:
		return "Morning & evening"
	case NotifyDaily:
		return "Once per day"
	default:
		return ""
	}
}

func ParseNotificationFrequency(s string) (NotificationFrequency, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, f := range NotificationFrequencies() {
		if v == string(f) || v == strings.ToLower(f.DisplayName()) {
			return f, nil
		}
	}
	switch v {
	case "3h":
		return NotifyEveryThreeHrs, nil
	case "6h":
		return NotifyEverySixHrs, nil
	case "12h":
		return NotifyTwiceDaily, nil
	case "none", "disabled":
		return NotifyOff, nil
	}
	return "", fmt.Errorf("unknown notification frequency %q (valid: off, hourly, every-3-hours, every-6-hours, twice-daily, daily)", s)
}
