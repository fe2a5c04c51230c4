// Package lock serializes benchmark runs on one machine.
//
// Two concurrent suites would contend for the same CPU, disk, and network
// and corrupt each other's measurements, so a run takes a machine-wide
// lock first. The primitive is mkdir, which is atomic on every filesystem
// we care about; the directory holds an info.json identifying the holder
// so a blocked run can say who it is waiting on.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hostbench/hostbench/internal/errors"
)

// Options tune lock acquisition.
type Options struct {
	// Dir is where the lock directory is created. Defaults to the system
	// temp directory.
	Dir string

	// Timeout is how long Acquire waits for a busy lock before giving up.
	Timeout time.Duration

	// Stale is the age past which a lock is presumed abandoned (crashed
	// run) and taken over. Zero disables takeover.
	Stale time.Duration
}

// DefaultOptions waits half a minute and treats hour-old locks as
// abandoned.
func DefaultOptions() Options {
	return Options{
		Timeout: 30 * time.Second,
		Stale:   time.Hour,
	}
}

// Lock is an acquired run lock. Release it when the run finishes.
type Lock struct {
	Dir  string
	Info *Info
}

const retryInterval = 2 * time.Second

// Acquire takes the machine-wide run lock, waiting for a busy one up to
// opts.Timeout and taking over stale ones.
func Acquire(opts Options) (*Lock, error) {
	baseDir := opts.Dir
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	lockDir := filepath.Join(baseDir, "hostbench-run.lock")
	infoFile := filepath.Join(lockDir, "info.json")

	info := NewInfo()
	start := time.Now()

	for {
		if time.Since(start) > opts.Timeout {
			return nil, errors.New(errors.ErrLock,
				fmt.Sprintf("Timed out waiting for the run lock after %s", opts.Timeout),
				fmt.Sprintf("Another benchmark is running: %s. Wait for it, or remove %s if it crashed.",
					readHolder(infoFile), lockDir))
		}

		if isStale(infoFile, opts.Stale) {
			// Abandoned by a crashed run; take it over.
			if err := os.RemoveAll(lockDir); err == nil {
				continue
			}
		}

		err := os.Mkdir(lockDir, 0o755)
		if err == nil {
			data, merr := info.Marshal()
			if merr == nil {
				merr = os.WriteFile(infoFile, data, 0o644)
			}
			if merr != nil {
				_ = os.RemoveAll(lockDir)
				return nil, errors.WrapWithCode(merr, errors.ErrLock,
					"Couldn't write the lock holder file",
					"Check permissions on "+baseDir)
			}
			return &Lock{Dir: lockDir, Info: info}, nil
		}
		if !os.IsExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrLock,
				"Couldn't create the lock directory",
				"Check permissions on "+baseDir)
		}

		// Held by someone else.
		time.Sleep(retryInterval)
	}
}

// Release removes the lock directory.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := os.RemoveAll(l.Dir); err != nil {
		return errors.WrapWithCode(err, errors.ErrLock,
			"Couldn't remove the lock directory",
			"Remove "+l.Dir+" by hand.")
	}
	return nil
}

// isStale reports whether the lock's info file says the holder started
// longer than threshold ago. Unreadable info is treated as fresh; a lock
// mid-acquisition has no info file yet.
func isStale(infoFile string, threshold time.Duration) bool {
	if threshold <= 0 {
		return false
	}
	data, err := os.ReadFile(infoFile)
	if err != nil {
		return false
	}
	info, err := ParseInfo(data)
	if err != nil {
		return false
	}
	return info.Age() > threshold
}

// readHolder describes who holds the lock, for error messages.
func readHolder(infoFile string) string {
	data, err := os.ReadFile(infoFile)
	if err != nil {
		return "unknown"
	}
	info, err := ParseInfo(data)
	if err != nil {
		return strings.TrimSpace(string(data))
	}
	return info.String()
}
