package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// NewRunID derives a run identifier from the hostname and a fresh UUID.
// An empty hostname falls back to the machine's; tests pass one in for
// determinism.
func NewRunID(hostname string) string {
	if hostname == "" {
		if h, err := os.Hostname(); err == nil {
			hostname = h
		} else {
			hostname = "gemscreen"
		}
	}
	u := uuid.New()
	return fmt.Sprintf("%s-%x", hostname, u[:])
}

// TimestampedRunDir joins the save root with a date-prefixed run folder,
// e.g. /data/screens/20260825_gem_test.
func TimestampedRunDir(saveDir, name string, now time.Time) string {
	return filepath.Join(saveDir, now.Format("20060102")+"_"+name)
}
