// Package version holds the build version, set with
// -ldflags "-X github.com/futureCreator/qcflow/pkg/version.Version=...".
package version

var Version = "dev"
