package obsoletes

import (
	"sort"
	"strings"
)

const (
	thirtyTwoBitVariantSuffixConstant = "-32bit"
	sixtyFourBitVariantSuffixConstant = "-64bit"
)

// ObsoleteSetComputer derives the obsolete binaries from the full and selected binary sets.
type ObsoleteSetComputer struct {
	exceptionRules      NameRuleTable
	releasePackageRules NameRuleTable
}

// NewObsoleteSetComputer constructs a computer using the standard exception and release package rules.
func NewObsoleteSetComputer() ObsoleteSetComputer {
	return ObsoleteSetComputer{exceptionRules: ExceptionRules(), releasePackageRules: ReleasePackageRules()}
}

// Compute returns the sorted, de-duplicated binaries of fullBinaryList that are not selected and
// not excepted. A -32bit or -64bit variant is only reported together with its base binary.
func (computer ObsoleteSetComputer) Compute(fullBinaryList []string, selected BinarySet) []string {
	candidates := make(BinarySet)
	for _, binaryName := range fullBinaryList {
		if selected.Contains(binaryName) {
			continue
		}
		if computer.exceptionRules.Matches(binaryName) || computer.releasePackageRules.Matches(binaryName) {
			continue
		}
		candidates.Add(binaryName)
	}

	obsolete := make([]string, 0, len(candidates))
	for binaryName := range candidates {
		if baseName, isVariant := variantBase(binaryName); isVariant && !candidates.Contains(baseName) {
			continue
		}
		obsolete = append(obsolete, binaryName)
	}

	sort.Strings(obsolete)
	return obsolete
}

// variantBase strips a bit-width variant suffix.
func variantBase(binaryName string) (string, bool) {
	for _, variantSuffix := range []string{thirtyTwoBitVariantSuffixConstant, sixtyFourBitVariantSuffixConstant} {
		if strings.HasSuffix(binaryName, variantSuffix) {
			return strings.TrimSuffix(binaryName, variantSuffix), true
		}
	}
	return "", false
}
