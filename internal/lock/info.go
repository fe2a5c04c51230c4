package lock

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// Info describes the holder of a run lock.
type Info struct {
	RunID    string    `json:"run_id"`
	User     string    `json:"user"`
	Hostname string    `json:"hostname"`
	PID      int       `json:"pid"`
	Started  time.Time `json:"started"`
}

// NewInfo describes this process as a lock holder, tagged with a fresh
// run ID.
func NewInfo() *Info {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	user := os.Getenv("USER")
	if user == "" {
		user = "unknown"
	}
	return &Info{
		RunID:    uuid.NewString(),
		User:     user,
		Hostname: hostname,
		PID:      os.Getpid(),
		Started:  time.Now(),
	}
}

// Age returns how long ago the lock was taken.
func (i *Info) Age() time.Duration {
	return time.Since(i.Started)
}

// Marshal serializes the Info to JSON.
func (i *Info) Marshal() ([]byte, error) {
	return json.Marshal(i)
}

// ParseInfo deserializes JSON data into an Info.
func ParseInfo(data []byte) (*Info, error) {
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// String returns a human-readable description of the holder.
func (i *Info) String() string {
	return fmt.Sprintf("%s@%s (pid %d)", i.User, i.Hostname, i.PID)
}
