package obsoletes

import (
	"regexp"
	"strings"
)

const (
	sourceArchitectureConstant         = "src"
	noSourceArchitectureConstant       = "nosrc"
	debugInfoSuffixConstant            = "-debuginfo"
	debugInfoVariantSuffixConstant     = "-debuginfo-32bit"
	debugSourceSuffixConstant          = "-debugsource"
	binaryFileNameNameGroupConstant    = "name"
	binaryFileNameVersionGroupConstant = "version"
	binaryFileNameReleaseGroupConstant = "release"
	binaryFileNameArchGroupConstant    = "arch"
)

// BinaryKind classifies a built artifact.
type BinaryKind string

// Binary kinds. Only BinaryKindBinary is shipped on distribution media.
const (
	BinaryKindBinary      BinaryKind = "binary"
	BinaryKindSource      BinaryKind = "source"
	BinaryKindDebugInfo   BinaryKind = "debuginfo"
	BinaryKindDebugSource BinaryKind = "debugsource"
)

// binaryFileNamePattern matches "[namespace::]name-version-release.arch.rpm".
var binaryFileNamePattern = regexp.MustCompile(`^(?:.*::)?(?P<name>.*)-(?P<version>[^-]+)-(?P<release>[^-]+)\.(?P<arch>[^-.]+)\.rpm$`)

// Binary is a parsed package file name.
type Binary struct {
	Name         string
	Version      string
	Release      string
	Architecture string
	Kind         BinaryKind
}

// Shippable reports whether the binary belongs on distribution media.
func (binary Binary) Shippable() bool {
	return binary.Kind == BinaryKindBinary
}

// ParseBinaryFileName parses a package file name. The boolean is false for names outside the grammar.
func ParseBinaryFileName(fileName string) (Binary, bool) {
	matches := binaryFileNamePattern.FindStringSubmatch(fileName)
	if matches == nil {
		return Binary{}, false
	}

	binary := Binary{
		Name:         matches[binaryFileNamePattern.SubexpIndex(binaryFileNameNameGroupConstant)],
		Version:      matches[binaryFileNamePattern.SubexpIndex(binaryFileNameVersionGroupConstant)],
		Release:      matches[binaryFileNamePattern.SubexpIndex(binaryFileNameReleaseGroupConstant)],
		Architecture: matches[binaryFileNamePattern.SubexpIndex(binaryFileNameArchGroupConstant)],
	}
	binary.Kind = classifyBinary(binary.Name, binary.Architecture)
	return binary, true
}

func classifyBinary(name string, architecture string) BinaryKind {
	switch {
	case architecture == sourceArchitectureConstant || architecture == noSourceArchitectureConstant:
		return BinaryKindSource
	case strings.HasSuffix(name, debugInfoSuffixConstant) || strings.HasSuffix(name, debugInfoVariantSuffixConstant):
		return BinaryKindDebugInfo
	case strings.HasSuffix(name, debugSourceSuffixConstant):
		return BinaryKindDebugSource
	default:
		return BinaryKindBinary
	}
}
