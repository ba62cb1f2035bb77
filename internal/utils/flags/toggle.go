// Package flags provides Cobra flag helpers shared by distkeeper commands.
package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValue               = "true"
	toggleFalseCanonicalValue              = "false"
	toggleParseErrorTemplate               = "invalid toggle value %q"
	toggleArgumentTruePlaceholderConstant  = "<YES|no>"
	toggleArgumentFalsePlaceholderConstant = "<yes|NO>"
	toggleTypeNameConstant                 = "bool"
)

var toggleLiteralValues = map[string]bool{
	"true":  true,
	"yes":   true,
	"on":    true,
	"1":     true,
	"t":     true,
	"y":     true,
	"false": false,
	"no":    false,
	"off":   false,
	"0":     false,
	"f":     false,
	"n":     false,
}

// AddToggleFlag registers a boolean flag that also accepts yes/no style values.
// A bare flag sets the value to true; "--flag=no" switches it off explicitly.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	if target != nil {
		*target = defaultValue
	}
	toggleValue := &toggleFlagValue{currentValue: defaultValue, target: target}
	flagSet.VarP(toggleValue, name, shorthand, formatToggleUsage(usage, defaultValue))

	if registeredFlag := flagSet.Lookup(name); registeredFlag != nil {
		registeredFlag.NoOptDefVal = toggleTrueCanonicalValue
	}
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleArgumentFalsePlaceholderConstant
	if defaultValue {
		placeholder = toggleArgumentTruePlaceholderConstant
	}
	trimmed := strings.TrimSpace(description)
	if len(trimmed) == 0 {
		return fmt.Sprintf("`%s`", placeholder)
	}
	return fmt.Sprintf("`%s` %s", placeholder, trimmed)
}

type toggleFlagValue struct {
	currentValue bool
	target       *bool
}

func (value *toggleFlagValue) Set(rawValue string) error {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if len(normalizedValue) == 0 {
		normalizedValue = toggleTrueCanonicalValue
	}

	parsedValue, recognized := toggleLiteralValues[normalizedValue]
	if !recognized {
		return fmt.Errorf(toggleParseErrorTemplate, rawValue)
	}

	value.currentValue = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}
	return nil
}

func (value *toggleFlagValue) String() string {
	if value != nil && value.currentValue {
		return toggleTrueCanonicalValue
	}
	return toggleFalseCanonicalValue
}

func (value *toggleFlagValue) Type() string {
	return toggleTypeNameConstant
}
