package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// LockManager serializes mutating operations (create, remove, bulk
// provision) per repository across arbo processes. The engine already
// serializes mutations in-process; the file lock extends that to a second
// arbo running against the same repository.
type LockManager struct {
	staleAfter time.Duration
}

func NewLockManager() *LockManager {
	return &LockManager{staleAfter: 10 * time.Second}
}

var errRepositoryBusy = errors.New("another arbo operation is running against this repository")

type RepoLock struct {
	path     string
	repoRoot string
	pid      int
}

type lockPayloadData struct {
	PID       int    `json:"pid"`
	RepoRoot  string `json:"repo_root"`
	Timestamp string `json:"timestamp"`
}

func (m *LockManager) Acquire(repoRoot string) (*RepoLock, error) {
	repoRoot = strings.TrimSpace(repoRoot)
	if repoRoot == "" {
		return nil, errors.New("repo root required")
	}
	lockPath, err := m.lockPath(repoRoot)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, err
	}

	pid := os.Getpid()
	payload, err := json.Marshal(lockPayloadData{
		PID:       pid,
		RepoRoot:  repoRoot,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
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
		return &RepoLock{path: lockPath, repoRoot: repoRoot, pid: pid}, nil
	}
	if !errors.Is(err, os.ErrExist) {
		return nil, err
	}

	info, statErr := os.Stat(lockPath)
	if statErr != nil {
		return nil, statErr
	}
	current, readErr := readLockPayload(lockPath)
	if readErr == nil && current.PID > 0 && pidAlive(current.PID) && current.PID != pid {
		return nil, errRepositoryBusy
	}
	if readErr == nil && time.Since(info.ModTime()) < m.staleAfter && current.PID != pid {
		return nil, errRepositoryBusy
	}

	// Holder is gone; take over the stale lock atomically.
	tmpPath := lockPath + "." + randomToken() + ".tmp"
	if err := os.WriteFile(tmpPath, payload, 0o644); err != nil {
		return nil, err
	}
	if err := os.Rename(tmpPath, lockPath); err != nil {
		_ = os.Remove(tmpPath)
		return nil, err
	}
	return &RepoLock{path: lockPath, repoRoot: repoRoot, pid: pid}, nil
}

func (l *RepoLock) Release() {
	if l == nil {
		return
	}
	_ = os.Remove(l.path)
}

func (m *LockManager) lockPath(repoRoot string) (string, error) {
	home, err := arboHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "locks", hashString(repoRoot)+".lock"), nil
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

func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	if err == nil {
		return true
	}
	if errors.Is(err, syscall.EPERM) {
		return true
	}
	return false
}

func hashString(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

func randomToken() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
