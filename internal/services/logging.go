package services

import (
	"log"
	"sync/atomic"
)

var debugEnabled atomic.Bool

// SetDebug toggles debugLog output
func SetDebug(enabled bool) {
	debugEnabled.Store(enabled)
}

func infoLog(format string, args ...any) {
	log.Printf(format, args...)
}

func debugLog(format string, args ...any) {
	if debugEnabled.Load() {
		log.Printf("DEBUG: "+format, args...)
	}
}
