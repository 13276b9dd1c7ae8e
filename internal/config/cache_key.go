package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionKey returns the cache key holding the principal of a live session.
func (r *CacheKeyStruct) SessionKey(jti string) string {
	return fmt.Sprintf("session:%s", jti)
}

// AuthCodeKey returns the cache key for a pending PKCE authorization code.
func (r *CacheKeyStruct) AuthCodeKey(code string) string {
	return fmt.Sprintf("auth_code:%s", code)
}

// AccessContextKey returns the cache key for a principal's resolved role and permissions.
func (r *CacheKeyStruct) AccessContextKey(userID string) string {
	return fmt.Sprintf("access:%s", userID)
}

// PermissionDraftKey returns the cache key for an admin's unsaved permission edits.
func (r *CacheKeyStruct) PermissionDraftKey(adminID string) string {
	return fmt.Sprintf("permission_draft:%s", adminID)
}

// RateLimitKey returns the counter key for a client within a fixed window.
func (r *CacheKeyStruct) RateLimitKey(scope, client string, window int64) string {
	return fmt.Sprintf("rate:%s:%s:%d", scope, client, window)
}

// AuthEventsChannel returns the Redis PubSub channel for a principal's auth events.
func (r *CacheKeyStruct) AuthEventsChannel(userID string) string {
	return fmt.Sprintf("auth_events:%s", userID)
}

var CacheKey = NewCacheKeyStruct()
