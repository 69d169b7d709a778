package worktree

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"time"
)

const mutationLockName = "workty.lock"

// LockManager serialises this tool's mutations of one repository. Git's
// own locks still guard its administrative files; this lock only keeps two
// git-workty invocations from interleaving their discover-then-mutate steps.
type LockManager struct {
	staleAfter time.Duration
}

func NewLockManager() *LockManager {
	return &LockManager{staleAfter: 10 * time.Second}
}

type MutationLock struct {
	path    string
	ownerID string
}

type lockPayloadData struct {
	OwnerID   string `json:"owner_id"`
	PID       int    `json:"pid"`
	Timestamp string `json:"timestamp"`
}

// Acquire takes the repository's mutation lock or fails with a
// WorktreeLockedError. It never waits.
func (m *LockManager) Acquire(repo *Repo) (*MutationLock, error) {
	lockPath := filepath.Join(repo.CommonDir, mutationLockName)
	ownerID := buildOwnerID()
	payload, err := lockPayload(ownerID)
	if err != nil {
		return nil, err
	}

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err == nil {
		if _, werr := file.Write(payload); werr != nil {
			_ = file.Close()
			_ = os.Remove(lockPath)
			return nil, werr
		}
		_ = file.Close()
		return &MutationLock{path: lockPath, ownerID: ownerID}, nil
	}
	if !errors.Is(err, os.ErrExist) {
		return nil, err
	}

	info, statErr := os.Stat(lockPath)
	if statErr != nil {
		return nil, statErr
	}
	current, readErr := readLockPayload(lockPath)
	if readErr == nil && current.PID > 0 && pidAlive(current.PID) {
		return nil, &WorktreeLockedError{Path: repo.CommonDir, Reason: fmt.Sprintf("git-workty pid %d is running", current.PID)}
	}
	if readErr != nil && time.Since(info.ModTime()) < m.staleAfter {
		return nil, &WorktreeLockedError{Path: repo.CommonDir, Reason: "lock is being written", Err: readErr}
	}

	// Stale lock: the owner is gone. Replace it and confirm we won.
	tmpPath := lockPath + "." + randomToken() + ".tmp"
	if err := os.WriteFile(tmpPath, payload, 0o644); err != nil {
		return nil, err
	}
	if err := os.Rename(tmpPath, lockPath); err != nil {
		_ = os.Remove(tmpPath)
		return nil, err
	}
	current, err = readLockPayload(lockPath)
	if err != nil {
		return nil, err
	}
	if current.OwnerID != ownerID {
		return nil, &WorktreeLockedError{Path: repo.CommonDir, Reason: "lock taken by another process"}
	}
	return &MutationLock{path: lockPath, ownerID: ownerID}, nil
}

// Release removes the lockfile if this process still owns it.
func (l *MutationLock) Release() {
	if l == nil {
		return
	}
	current, err := readLockPayload(l.path)
	if err != nil || current.OwnerID != l.ownerID {
		return
	}
	_ = os.Remove(l.path)
}

func lockPayload(ownerID string) ([]byte, error) {
	return json.Marshal(lockPayloadData{
		OwnerID:   ownerID,
		PID:       os.Getpid(),
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func readLockPayload(path string) (lockPayloadData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return lockPayloadData{}, err
	}
	var payload lockPayloadData
	if err := json.Unmarshal(data, &payload); err != nil {
		return lockPayloadData{}, err
	}
	return payload, nil
}

func buildOwnerID() string {
	name := os.Getenv("USER")
	if name == "" {
		if u, err := user.Current(); err == nil {
			name = u.Username
		}
	}
	if name == "" {
		name = "unknown"
	}
	host, _ := os.Hostname()
	if host == "" {
		host = "unknown"
	}
	return fmt.Sprintf("%s@%s:%d:%s", name, host, os.Getpid(), randomToken())
}

func randomToken() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf[:])
}
