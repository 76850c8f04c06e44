package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName names the XDG directories and secret store entries
const AppName = "wdc"

// ConfigDir returns the XDG-compliant config directory for wdc
// Typically ~/.config/wdc/ on Linux
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ConfigPath returns the full path to the config file
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json5")
}

// CacheDir returns the XDG-compliant cache directory for wdc
// Typically ~/.cache/wdc/ on Linux, holds the session token
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// DataDir returns the XDG-compliant data directory for wdc
// Typically ~/.local/share/wdc/ on Linux, holds the encrypted secrets file
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}
