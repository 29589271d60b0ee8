package config

// Version is injected at build time via ldflags.
//
// Build with:
//   go build -ldflags "-X 'github.com/jdbridge/jdbridge/internal/config.Version=v1.2.3'"
var Version = "dev"
