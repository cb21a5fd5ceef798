package common

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Build metadata. Release builds set these with
// -ldflags "-X github.com/bobmcallan/navfolio/internal/common.Version=...".
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// versionFileName sits beside the navfolio binaries in release archives.
const versionFileName = ".version"

func GetVersion() string {
	return Version
}

// GetBuild returns the build timestamp
func GetBuild() string {
	return Build
}

func GetGitCommit() string {
	return GitCommit
}

// GetFullVersion is the one-line form printed by `navfolio --version`.
func GetFullVersion() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", Version, Build, GitCommit)
}

// VersionInfo is the body of GET /api/version.
func VersionInfo() map[string]string {
	return map[string]string{
		"version": Version,
		"build":   Build,
		"commit":  GitCommit,
	}
}

// LoadVersionFromFile fills any build metadata still at its default from the
// .version file next to the running binary. Missing files are ignored.
func LoadVersionFromFile() {
	exe, err := os.Executable()
	if err != nil {
		return
	}
	f, err := os.Open(filepath.Join(filepath.Dir(exe), versionFileName))
	if err != nil {
		return
	}
	defer f.Close()

	applyVersionFields(readVersionFields(f))
}

// readVersionFields parses "key: value" lines. Blank lines and # comments are
// skipped; keys are lower-cased.
func readVersionFields(r io.Reader) map[string]string {
	fields := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(val)
	}
	return fields
}

// applyVersionFields never overrides values set through ldflags.
func applyVersionFields(fields map[string]string) {
	fill := func(target *string, unset, key string) {
		if v := fields[key]; v != "" && *target == unset {
			*target = v
		}
	}
	fill(&Version, "dev", "version")
	fill(&Build, "unknown", "build")
	fill(&GitCommit, "unknown", "commit")
}
