// Package version reports build information for csvread binaries.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	gojson "github.com/goccy/go-json"
)

const (
	unknownValue     = "unknown"
	commitHashLength = 7

	// ArrowModule is the module path of the Arrow implementation in use.
	ArrowModule = "github.com/apache/arrow-go/v18"
)

// Build-time variables set by ldflags
var (
	Version   = "dev"
	BuildDate = unknownValue
	GitCommit = unknownValue
	GoVersion = runtime.Version()
)

// BuildInfo contains detailed build information
type BuildInfo struct {
	Version      string   `json:"version"`
	BuildDate    string   `json:"build_date"`
	GitCommit    string   `json:"git_commit"`
	GoVersion    string   `json:"go_version"`
	Platform     string   `json:"platform"`
	Dirty        bool     `json:"dirty"`
	Release      bool     `json:"release"`
	Module       string   `json:"module,omitempty"`
	ArrowVersion string   `json:"arrow_version,omitempty"`
	Deps         []Module `json:"deps,omitempty"`
}

// Module represents a Go module with version information
type Module struct {
	Path    string `json:"path"`
	Version string `json:"version"`
}

// Info returns detailed build information
func Info() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: GoVersion,
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Dirty:     strings.HasSuffix(GitCommit, "-dirty"),
		Release:   IsRelease(),
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		info.Module = bi.Main.Path
		for _, dep := range bi.Deps {
			info.Deps = append(info.Deps, Module{Path: dep.Path, Version: dep.Version})
		}
		for _, s := range bi.Settings {
			if s.Key == "vcs.modified" && s.Value == "true" {
				info.Dirty = true
			}
		}
	}
	info.ArrowVersion = info.DependencyVersion(ArrowModule)

	return info
}

// DependencyVersion returns the version of the dependency at path, or "".
func (b BuildInfo) DependencyVersion(path string) string {
	for _, dep := range b.Deps {
		if dep.Path == path {
			return dep.Version
		}
	}
	return ""
}

// String returns a formatted version string
func (b BuildInfo) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "csvread %s", b.Version)
	if b.Dirty {
		sb.WriteString(" (dirty)")
	}
	sb.WriteString("\n")

	if b.BuildDate != unknownValue {
		fmt.Fprintf(&sb, "Build Date: %s\n", b.BuildDate)
	}

	if b.GitCommit != unknownValue {
		commit := strings.TrimSuffix(b.GitCommit, "-dirty")
		if len(commit) > commitHashLength {
			commit = commit[:commitHashLength]
		}
		fmt.Fprintf(&sb, "Git Commit: %s\n", commit)
	}

	fmt.Fprintf(&sb, "Go Version: %s (%s)\n", b.GoVersion, b.Platform)
	if b.ArrowVersion != "" {
		fmt.Fprintf(&sb, "Arrow: %s\n", b.ArrowVersion)
	}

	return sb.String()
}

// JSON returns the build information as indented JSON. Dependencies are
// included only when withDeps is set.
func (b BuildInfo) JSON(withDeps bool) ([]byte, error) {
	if !withDeps {
		b.Deps = nil
	}
	data, err := gojson.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling build info: %w", err)
	}
	return data, nil
}

// CreatedBy identifies csvread in the metadata of files it writes.
func CreatedBy() string {
	return "csvread version " + Version
}

// IsRelease reports whether Version names a tagged release rather than a
// development or pre-release build.
func IsRelease() bool {
	return Version != "dev" && !strings.Contains(Version, "-")
}
