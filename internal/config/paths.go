package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds the resolved absolute directories the tools read and write
type Paths struct {
	WorkingDir string
	OutputDir  string
	LogsDir    string
}

// GetPaths resolves cfg against the current working directory
func GetPaths(cfg PathsConfig) (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	return &Paths{
		WorkingDir: wd,
		OutputDir:  resolve(wd, cfg.OutputDir, DefaultOutputDir),
		LogsDir:    resolve(wd, cfg.LogsDir, DefaultLogsDir),
	}, nil
}

func resolve(base, path, fallback string) string {
	if path == "" {
		path = fallback
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

// EnsureDirectories creates the output and log directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.OutputDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// GetOutputPath returns filename inside the output directory
func (p *Paths) GetOutputPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// GetLogPath returns filename inside the logs directory
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a regular file exists at path
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
