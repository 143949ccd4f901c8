package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionStartKey returns the cache key for a session's start time and time
// budget, keyed per student so a foreign session id never hits another
// student's entry.
func (r *CacheKeyStruct) SessionStartKey(sessionID string, studentID int) string {
	return fmt.Sprintf("student:%d:session:%s:started_at", studentID, sessionID)
}

var CacheKey = NewCacheKeyStruct()
