package cli

import (
	"bytes"
	_ "embed"
)

// defaultConfigurationDocument holds the built-in settings, including the comments that explain fallbacks.
//
//go:embed default_config.yaml
var defaultConfigurationDocument []byte

// EmbeddedDefaultConfiguration returns a copy of the built-in configuration document and its format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return bytes.Clone(defaultConfigurationDocument), configurationTypeConstant
}
