package models

// DeviceInfo is the human-readable device summary recorded next to a
// fingerprint on device upsert and access logging.
type DeviceInfo struct {
	Browser          string `json:"browser"`
	OS               string `json:"os"`
	DeviceType       string `json:"device_type"`
	ScreenResolution string `json:"screen_resolution"`
	Language         string `json:"language"`
	Timezone         string `json:"timezone"`
}

// AccessLogEntry is one gallery-open event tied to a user and device.
type AccessLogEntry struct {
	UserID            string     `json:"user_id"`
	GalleryID         string     `json:"gallery_id"`
	GalleryName       string     `json:"gallery_name"`
	DeviceFingerprint string     `json:"device_fingerprint"`
	DeviceInfo        DeviceInfo `json:"device_info"`
	SessionID         string     `json:"session_id,omitempty"`
}

// AppLaunchEntry is one app-launch event.
type AppLaunchEntry struct {
	UserID            string `json:"user_id"`
	AppURL            string `json:"app_url"`
	AppTitle          string `json:"app_title"`
	GalleryID         string `json:"gallery_id"`
	DeviceFingerprint string `json:"device_fingerprint"`
}
