package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"
)

const (
	storePasswordEnv = "WDC_STORE_PASSWORD"
	backendEnv       = "WDC_SECRETS_BACKEND"
	quietEnv         = "WDC_QUIET"
)

// warningShown checks if the file-store warning has already been shown.
// Uses a marker file in the data directory to avoid repeating on every command.
func warningShown() bool {
	return fileExists(warningMarkerPath())
}

func markWarningShown() {
	_ = os.WriteFile(warningMarkerPath(), []byte("1"), 0600)
}

func warningMarkerPath() string {
	return filepath.Join(xdg.DataHome, ServiceName, ".file-store-warning-shown")
}

// quietMode returns true if the user has suppressed warnings via WDC_QUIET.
func quietMode() bool {
	v := os.Getenv(quietEnv)
	return v == "1" || v == "true"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// warnOnce prints a message to stderr, but only the first time.
func warnOnce(msg string) {
	if quietMode() || warningShown() {
		return
	}
	fmt.Fprintln(os.Stderr, msg)
}

func markWarningsDone() {
	if !warningShown() {
		markWarningShown()
	}
}

// NewStore creates a Store instance using platform-appropriate backend.
// WDC_SECRETS_BACKEND=file|keyring forces a backend; otherwise the OS keyring
// is tried first and the encrypted file is the fallback.
func NewStore() (Store, error) {
	switch strings.ToLower(os.Getenv(backendEnv)) {
	case "file":
		return NewFileStore("")
	case "keyring":
		return NewKeyringStore()
	case "":
	default:
		return nil, fmt.Errorf("unknown %s %q (expected file or keyring)", backendEnv, os.Getenv(backendEnv))
	}

	if IsWSL() || IsHeadless() {
		warnOnce("Detected WSL/headless environment, using encrypted file storage")
		return fileFallback()
	}

	store, err := NewKeyringStore()
	if err != nil {
		warnOnce(fmt.Sprintf("Keyring unavailable (%v), falling back to encrypted file", err))
		return fileFallback()
	}

	return store, nil
}

func fileFallback() (Store, error) {
	store, err := NewFileStore("")
	if err != nil {
		return nil, err
	}
	markWarningsDone()
	return store, nil
}

// IsWSL returns true if running under Windows Subsystem for Linux.
func IsWSL() bool {
	if runtime.GOOS != "linux" {
		return false
	}

	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}

	version := strings.ToLower(string(data))
	return strings.Contains(version, "microsoft") || strings.Contains(version, "wsl")
}

// IsHeadless returns true if running in a headless environment (no display server).
// Only applicable on Linux; macOS and Windows are assumed to have GUI.
func IsHeadless() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	return os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == ""
}
