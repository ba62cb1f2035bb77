// Package utils exposes reusable helpers consumed by multiple commands.
//
// It houses the ConfigurationLoader, which layers the embedded defaults, an
// optional configuration file, and DISTKEEPER_ environment variables through
// Viper, and the LoggerFactory that builds zap loggers for the CLI.
package utils
