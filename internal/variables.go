package internal

import (
	"fmt"
	"runtime"
	"strings"
)

const (

	// Program name used for logging, paths and usage output.
	Name = "forkd"

	// Placeholder for a build variable that was not set.
	undefined = "(undefined)"

	// Version string reported by builds made outside the release pipeline.
	localBuild = "(local)"

	// Release branch; its name is omitted from version strings.
	releaseBranch = "main"
)

// Injected with -ldflags "-X github.com/cruciblehq/forkd/internal.<name>=...".
var (
	version   = "" // Semantic version, with or without a "v" prefix.
	stage     = "" // Branch the binary was built from.
	gitCommit = "" // Commit hash.

	rawQuiet   = "false" // Default for --quiet.
	rawDebug   = "false" // Default for --debug.
	rawVerbose = "false" // Default for --verbose.
	rawWorkers = ""      // Default for --workers.
)

// Describes the binary as stamped by the build.
type BuildInfo struct {
	Version string // Version without "v" prefix, or "(undefined)".
	Stage   string // Lowercased branch, or "(undefined)".
	Commit  string // Commit hash, or "(undefined)".
	Arch    string // GOARCH of the running binary.
	Local   bool   // Any of version, stage or commit was not stamped.
}

// Returns the stamped build information.
func Build() BuildInfo {
	return BuildInfo{
		Version: orUndefined(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(version)), "v")),
		Stage:   orUndefined(strings.ToLower(strings.TrimSpace(stage))),
		Commit:  orUndefined(strings.TrimSpace(gitCommit)),
		Arch:    runtime.GOARCH,
		Local: strings.TrimSpace(version) == "" ||
			strings.TrimSpace(stage) == "" ||
			strings.TrimSpace(gitCommit) == "",
	}
}

// Returns "<version>[+<stage>] <commit> [<arch>]", or "(local)" for builds
// that were not stamped. The stage is omitted for release branch builds.
func VersionString() string {
	b := Build()
	if b.Local {
		return localBuild
	}

	s := ""
	if b.Stage != releaseBranch {
		s = "+" + b.Stage
	}

	return fmt.Sprintf("%s%s %s [%s]", b.Version, s, b.Commit, b.Arch)
}

func orUndefined(s string) string {
	if s == "" {
		return undefined
	}
	return s
}
