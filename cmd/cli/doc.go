// Package cli constructs the distkeeper command-line interface, wiring the
// Cobra command hierarchy, the Viper configuration loader with its embedded
// defaults, and the zap logger shared by every subcommand.
package cli
