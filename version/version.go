package version

import "runtime"

// Build information. Populated at build time via -ldflags:
//
//	-X github.com/paper2gal/paper2gal/version.GitRelease=v0.1.0
var (
	GitRelease    = "dev"
	GitCommit     = "unknown"
	GitCommitDate = "unknown"
	GoInfo        = runtime.Version()
)
