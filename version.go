package petal

import "fmt"

// Release components of the petal build. Bump Major on breaking protocol
// changes, Minor on new messages and Patch on fixes.
const (
	Major      = 0
	Minor      = 1
	Patch      = 0
	PreRelease = "-dev"
)

// GitCommit is injected at link time with
//   -ldflags "-X github.com/petaldocs/petal.GitCommit=<sha>"
var GitCommit = ""

// Version returns the semantic version of this build, followed by the
// commit hash when one was provided at link time.
func Version() string {
	v := fmt.Sprintf("v%d.%d.%d%s", Major, Minor, Patch, PreRelease)
	if GitCommit == "" {
		return v
	}
	return v + " " + GitCommit
}
