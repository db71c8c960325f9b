package config

// Version is the graph engine binary version.
// Set at build time via: -ldflags "-X github.com/relgraph/graphengine/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
