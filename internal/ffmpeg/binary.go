// Package ffmpeg locates and drives the ffmpeg, ffprobe and ffplay
// binaries: probing, thumbnail extraction, ProRes encodes and previews.
package ffmpeg

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Toolset holds the resolved paths of the three binaries. FFplay is empty
// when not installed; previews fail with a clear error in that case.
type Toolset struct {
	FFmpeg  string
	FFprobe string
	FFplay  string
}

func exeName(tool string) string {
	if runtime.GOOS == "windows" {
		return tool + ".exe"
	}
	return tool
}

// locate searches for one binary. Search order:
//  1. configDir/tool, when a directory is configured
//  2. bin/tool next to the running executable (bundled installs)
//  3. MEDIAPRESS_<TOOL>_BINARY environment variable
//  4. ./tool (current directory, useful for development)
//  5. tool on PATH
func locate(tool, configDir string) (string, error) {
	name := exeName(tool)

	if configDir != "" {
		p := filepath.Join(configDir, name)
		if isExecutable(p) {
			return p, nil
		}
		return "", fmt.Errorf("%s not found in configured directory %s", tool, configDir)
	}

	if self, err := os.Executable(); err == nil {
		p := filepath.Join(filepath.Dir(self), "bin", name)
		if isExecutable(p) {
			return p, nil
		}
	}

	if envPath := os.Getenv("MEDIAPRESS_" + strings.ToUpper(tool) + "_BINARY"); envPath != "" {
		if isExecutable(envPath) {
			return envPath, nil
		}
	}

	if p := "./" + name; isExecutable(p) {
		return p, nil
	}

	if p, err := exec.LookPath(name); err == nil {
		return p, nil
	}

	return "", fmt.Errorf("binary %s not found", tool)
}

// LocateToolset resolves all three binaries. ffmpeg and ffprobe are
// required; a missing ffplay is tolerated.
func LocateToolset(configDir string) (Toolset, error) {
	var set Toolset
	var err error

	if set.FFmpeg, err = locate("ffmpeg", configDir); err != nil {
		return Toolset{}, err
	}
	if set.FFprobe, err = locate("ffprobe", configDir); err != nil {
		return Toolset{}, err
	}
	set.FFplay, _ = locate("ffplay", configDir)

	return set, nil
}

// isExecutable checks if a file exists and is executable by the current user.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode()&0111 != 0
}
