package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	envDebug       = "WORKTY_DEBUG"
	envLogDir      = "WORKTY_LOG_DIR"
	envMaxLogFiles = "WORKTY_MAX_LOG_FILES"

	DefaultMaxLogFiles = 20
)

// Logger is discarding until Initialize enables debug logging.
var Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))

// Initialize enables JSON debug logging to a fresh file when debug is set
// or WORKTY_DEBUG is truthy. It returns the log file path, empty when
// logging stays off.
func Initialize(debug bool) (string, error) {
	if envEnabled(envDebug) {
		debug = true
	}
	if !debug {
		Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
		return "", nil
	}

	logDir, err := logDir()
	if err != nil {
		return "", fmt.Errorf("failed to get log directory: %w", err)
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	maxLogFiles := DefaultMaxLogFiles
	if v := strings.TrimSpace(os.Getenv(envMaxLogFiles)); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			maxLogFiles = parsed
		}
	}
	if maxLogFiles > 0 {
		if err := rotateLogs(logDir, maxLogFiles); err != nil {
			fmt.Fprintf(os.Stderr, "warning: log rotation failed: %v\n", err)
		}
	}

	logFilePath := filepath.Join(logDir, uuid.New().String()+".log")
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create log file: %w", err)
	}
	Logger = slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}))
	Logger.Info("debug logging initialized", "log_file", logFilePath, "pid", os.Getpid(), "args", os.Args)
	return logFilePath, nil
}

// rotateLogs deletes the oldest .log files so that, with the file about to
// be created, at most maxLogFiles remain.
func rotateLogs(logDir string, maxLogFiles int) error {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return fmt.Errorf("failed to read log directory: %w", err)
	}

	type logFileInfo struct {
		path    string
		modTime time.Time
	}
	var logFiles []logFileInfo
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".log" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		logFiles = append(logFiles, logFileInfo{path: filepath.Join(logDir, entry.Name()), modTime: info.ModTime()})
	}
	if len(logFiles) < maxLogFiles {
		return nil
	}

	sort.Slice(logFiles, func(i, j int) bool {
		return logFiles[i].modTime.Before(logFiles[j].modTime)
	})
	numToDelete := len(logFiles) - maxLogFiles + 1
	for i := 0; i < numToDelete && i < len(logFiles); i++ {
		if err := os.Remove(logFiles[i].path); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to delete old log file %s: %v\n", logFiles[i].path, err)
		}
	}
	return nil
}

func logDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(envLogDir)); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".workty", "logs"), nil
}

func envEnabled(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
