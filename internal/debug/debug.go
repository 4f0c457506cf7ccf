// Package debug provides development logging for archlens.
package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// MaxLogSize is the size above which Enable starts the file over.
const MaxLogSize = 5 << 20

const stampFormat = "15:04:05.000"

var (
	mu      sync.Mutex
	logFile *os.File
	logPath string
)

// Enable turns on debug logging to the specified file. Calling it again
// with another path switches files.
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		if path == logPath {
			return nil
		}
		closeLocked()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if info, err := os.Stat(path); err == nil && info.Size() > MaxLogSize {
		flags |= os.O_TRUNC
	}
	//nolint:gosec // G304: path comes from the configured data directory.
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	logFile = f
	logPath = path

	writeLocked("=== archlens debug session ===")
	writeLocked(fmt.Sprintf("Time: %s pid: %d", time.Now().Format(time.RFC3339), os.Getpid()))
	writeLocked("Log file: " + path)
	return nil
}

// Disable turns off debug logging and closes the file.
func Disable() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
}

// IsEnabled returns whether debug logging is enabled.
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return logFile != nil
}

// LogPath returns the path of the current log file, empty when disabled.
func LogPath() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// Log writes a debug message if logging is enabled.
func Log(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	writeLocked(fmt.Sprintf(format, args...))
}

// Event logs an event with component context.
func Event(component, eventType, details string) {
	Log("[%s] %s: %s", component, eventType, details)
}

// Error logs an error with context.
func Error(component string, err error, context string) {
	Log("[%s] ERROR: %s - %v", component, context, err)
}

func writeLocked(line string) {
	if logFile == nil {
		return
	}
	_, _ = fmt.Fprintf(logFile, "[%s] %s\n", time.Now().Format(stampFormat), line) //nolint:errcheck // best effort
	_ = logFile.Sync()                                                             //nolint:errcheck // flushed for tail -f
}

func closeLocked() {
	if logFile == nil {
		return
	}
	_ = logFile.Close() //nolint:errcheck // nothing useful to do on close failure
	logFile = nil
	logPath = ""
}
