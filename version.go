// Package wpms holds build metadata for the wpms command.
package wpms

// Version is overridden at build time via -ldflags.
var Version = "dev"
