package fingerprint

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"edu_gallery/internal/domain/models"
)

// Signals are the browser/device properties a client reports for device
// identification. The derived fingerprint is a heuristic: stable only while
// none of the signals change, not guaranteed unique, and explicitly not a
// security credential.
type Signals struct {
	UserAgent           string `json:"userAgent"`
	Language            string `json:"language"`
	Platform            string `json:"platform"`
	ScreenResolution    string `json:"screenResolution"`
	ColorDepth          int    `json:"colorDepth"`
	Timezone            string `json:"timezone"`
	Canvas              string `json:"canvas"`
	Plugins             string `json:"plugins"`
	HardwareConcurrency int    `json:"hardwareConcurrency"`
}

// Fingerprint folds the signals into a short base-36 string. The composite
// is the JSON encoding of the signal set, matching what clients have always
// produced, so fingerprints stay comparable across client versions. HTML
// escaping is off: browsers serialize "<", ">" and "&" literally, and a
// plugin list or user agent containing them must hash the same here.
func Fingerprint(sig Signals) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(sig); err != nil {
		// Signals is a flat struct of strings and ints; Encode cannot fail.
		return Hash(sig.UserAgent)
	}

	// Encode appends a trailing newline the clients never hash.
	return Hash(strings.TrimSuffix(buf.String(), "\n"))
}

// Hash is the 32-bit rolling hash the original clients use:
// hash = hash*31 + ch over UTF-16 code units, folded to 32 bits, absolute
// value, base-36. Not collision-resistant.
func Hash(s string) string {
	var hash int32
	for _, r := range s {
		// Code points above the BMP occupy two UTF-16 units.
		if r > 0xFFFF {
			r -= 0x10000
			hi := 0xD800 + (r >> 10)
			lo := 0xDC00 + (r & 0x3FF)
			hash = hash<<5 - hash + hi
			hash = hash<<5 - hash + lo
			continue
		}
		hash = hash<<5 - hash + r
	}

	v := int64(hash)
	if v < 0 {
		v = -v
	}

	return strconv.FormatInt(v, 36)
}

// DeriveDeviceInfo builds the human-readable device summary from a user
// agent plus the reported display signals, mirroring the client-side
// detection rules.
func DeriveDeviceInfo(sig Signals) models.DeviceInfo {
	ua := sig.UserAgent

	browser := "Unknown"
	switch {
	case strings.Contains(ua, "Firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "Edg"):
		browser = "Edge"
	case strings.Contains(ua, "OPR"), strings.Contains(ua, "Opera"):
		browser = "Opera"
	case strings.Contains(ua, "Chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "Safari"):
		browser = "Safari"
	}

	os := "Unknown"
	switch {
	case strings.Contains(ua, "Windows"):
		os = "Windows"
	case strings.Contains(ua, "Android"):
		os = "Android"
	case strings.Contains(ua, "iPhone"), strings.Contains(ua, "iPad"), strings.Contains(ua, "iOS"):
		os = "iOS"
	case strings.Contains(ua, "Mac"):
		os = "macOS"
	case strings.Contains(ua, "Linux"):
		os = "Linux"
	}

	deviceType := "Desktop"
	switch {
	case strings.Contains(ua, "Mobi"), strings.Contains(ua, "Android"):
		deviceType = "Mobile"
	case strings.Contains(ua, "Tablet"), strings.Contains(ua, "iPad"):
		deviceType = "Tablet"
	}

	return models.DeviceInfo{
		Browser:          browser,
		OS:               os,
		DeviceType:       deviceType,
		ScreenResolution: sig.ScreenResolution,
		Language:         sig.Language,
		Timezone:         sig.Timezone,
	}
}
