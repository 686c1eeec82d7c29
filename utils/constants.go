// File: utils/constants.go
package utils

import "time"

// AuthCachePrefix is the prefix used for Redis session keys.
const AuthCachePrefix = "auth:"

// RevokedTokenPrefix marks identity tokens that were signed out before expiry.
const RevokedTokenPrefix = "auth:revoked:"

// DefaultSessionTTL applies when an identity token carries no expiry.
const DefaultSessionTTL = 12 * time.Hour

// Storage keys carried over from the browser build so exported data stays recognisable.
const (
	LastResultKey = "analysis_result"
	APIKeyKey     = "gemini_api_key"
)

// BookingIDPrefix starts every booking identifier.
const BookingIDPrefix = "booking_"
