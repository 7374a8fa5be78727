package config

import "time"

// Timeout constants
const (
	// HTTP timeouts
	DefaultHTTPTimeout    = 60 * time.Second
	ServerShutdownTimeout = 30 * time.Second

	// Database timeouts
	DatabaseConnMaxLifetime = 5 * time.Minute

	// Session timeouts
	SessionMaxAge = 7 * 24 * time.Hour // 7 days

	// Object storage timeouts
	UploadTimeout = 60 * time.Second
)

// Server defaults
const (
	DefaultServerPort = "8080"
)

// Submission limits enforced by the intake form handler
const (
	MaxSubmissionImages = 5
	MaxImageSizeBytes   = 10 << 20 // 10 MiB per photo
)

// Gallery defaults
const (
	// DefaultJitterRadiusDeg mirrors the public map jitter of roughly 5 km.
	DefaultJitterRadiusDeg = 0.1
)

// Session configuration constants
const (
	SessionPath     = "/"
	SessionHTTPOnly = true
	SessionSecure   = false // Set to true in production with HTTPS

	SessionName = "gearreport-session"
)

// Security configuration constants
const (
	// Content Security Policy
	DefaultCSP = "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'; img-src 'self' data: https:; media-src 'self' blob: data:;"
)
