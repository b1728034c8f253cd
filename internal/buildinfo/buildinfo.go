// Package buildinfo exposes build metadata stamped in with -ldflags -X.
package buildinfo

// Version is the release tag of this build, empty for local builds.
var Version = ""

// Commit is the git commit SHA of this build.
var Commit = ""

// BuildDate is the RFC3339 timestamp of this build.
var BuildDate = ""
