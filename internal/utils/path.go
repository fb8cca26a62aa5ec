package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// PathResolver resolves word list and config locations relative to the running binary
type PathResolver struct {
	executableDir string
	homeDir       string
	configDir     string
}

// NewPathResolver creates a new path resolver that determines the executable location
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}

	// Resolve any symlinks to get the actual binary location
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executableDir: filepath.Dir(execPath),
		homeDir:       homeDir,
		configDir:     getConfigDir(homeDir),
	}

	log.Debugf("PathResolver initialized: exec=%s, configDir=%s", execPath, pr.configDir)
	return pr, nil
}

// getConfigDir returns the appropriate config directory for the platform
func getConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, ".config", "wordscan")
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, "wordscan")
		}
		return filepath.Join(homeDir, ".config", "wordscan")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "wordscan")
		}
		return filepath.Join(homeDir, "AppData", "Roaming", "wordscan")
	default:
		return filepath.Join(homeDir, ".wordscan")
	}
}

// WordListCandidates lists the places a word list named name is looked for, in order:
// 1. the path itself (absolute, or relative to the working directory)
// 2. relative to the executable directory
// 3. the data/ directories next to the executable and in the config dir
func (pr *PathResolver) WordListCandidates(name string) []string {
	if filepath.IsAbs(name) {
		return []string{name}
	}

	candidates := []string{name}
	if cwd, err := os.Getwd(); err == nil {
		candidates[0] = filepath.Join(cwd, name)
	}
	base := filepath.Base(name)
	return append(candidates,
		filepath.Join(pr.executableDir, name),
		filepath.Join(pr.executableDir, "data", base),
		filepath.Join(filepath.Dir(pr.executableDir), "data", base),
		filepath.Join(pr.configDir, "data", base),
	)
}

// ResolveWordList returns the first existing candidate for name. When none
// exists the first candidate is returned so the caller reports a sensible path.
func (pr *PathResolver) ResolveWordList(name string) string {
	candidates := pr.WordListCandidates(name)
	for _, path := range candidates {
		if stat, err := os.Stat(path); err == nil && !stat.IsDir() {
			log.Debugf("Found word list: %s", path)
			return path
		}
		log.Debugf("Word list candidate not found: %s", path)
	}
	return candidates[0]
}

// GetConfigPath returns the full path for a config file
// It ensures the config directory exists and handles read-only filesystem issues
func (pr *PathResolver) GetConfigPath(filename string) (string, error) {
	configPath := filepath.Join(pr.configDir, filename)
	if pr.ensureConfigDir(pr.configDir) {
		return configPath, nil
	}

	fallbackDirs := []string{
		filepath.Join(pr.homeDir, ".wordscan"),
		filepath.Join(os.TempDir(), "wordscan"),
		pr.executableDir,
	}

	for _, dir := range fallbackDirs {
		if pr.ensureConfigDir(dir) {
			path := filepath.Join(dir, filename)
			log.Warnf("Using fallback config location: %s", path)
			return path, nil
		}
	}

	tempPath := filepath.Join(os.TempDir(), filename)
	log.Warnf("Using temporary config file: %s", tempPath)
	return tempPath, nil
}

// ensureConfigDir creates the directory if it doesn't exist and tests writability
func (pr *PathResolver) ensureConfigDir(dir string) bool {
	if err := EnsureDir(dir); err != nil {
		log.Debugf("Cannot create config directory %s: %v", dir, err)
		return false
	}
	return testWriteAccess(dir)
}
