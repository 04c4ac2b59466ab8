package version

// Version is the tool version stamped into reports and the User-Agent.
// Overridable at build time:
//
//	go build -ldflags "-X github.com/apertureless/burnbench/internal/version.Version=v0.2.0"
var Version = "0.1.0"
