package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	daemonName = "forkd"

	// Name of the configuration file inside each configuration directory.
	configFile = "config.yaml"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the directory for runtime files.
//
//	Linux:   $XDG_RUNTIME_DIR/forkd or /run/user/<uid>/forkd
//	macOS:   ~/Library/Caches/forkd/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, daemonName)
	}
	return filepath.Join(xdg.CacheHome, daemonName, "run")
}

// Default path to the PID file.
//
//	Linux:   $XDG_RUNTIME_DIR/forkd/forkd.pid
//	macOS:   ~/Library/Caches/forkd/run/forkd.pid
func PIDFile() string {
	return filepath.Join(Runtime(), daemonName+".pid")
}

// Candidate configuration files, most specific first.
//
//	$XDG_CONFIG_HOME/forkd/config.yaml
//	$XDG_CONFIG_DIRS/forkd/config.yaml (each entry)
//
// Files that do not exist are skipped by the loader.
func ConfigFiles() []string {
	files := make([]string, 0, 1+len(xdg.ConfigDirs))
	files = append(files, filepath.Join(xdg.ConfigHome, daemonName, configFile))
	for _, dir := range xdg.ConfigDirs {
		files = append(files, filepath.Join(dir, daemonName, configFile))
	}
	return files
}
