package obsoletes

import "strings"

// NameMatchKind selects how a NameRule compares a name.
type NameMatchKind int

// Name rule match kinds.
const (
	NameMatchPrefix NameMatchKind = iota
	NameMatchSuffix
	NameMatchSubstring
	NameMatchExact
)

// NameRule is a single predicate over a package or binary name.
type NameRule struct {
	Kind    NameMatchKind
	Pattern string
}

// Matches reports whether name satisfies the rule.
func (rule NameRule) Matches(name string) bool {
	switch rule.Kind {
	case NameMatchPrefix:
		return strings.HasPrefix(name, rule.Pattern)
	case NameMatchSuffix:
		return strings.HasSuffix(name, rule.Pattern)
	case NameMatchSubstring:
		return strings.Contains(name, rule.Pattern)
	case NameMatchExact:
		return name == rule.Pattern
	default:
		return false
	}
}

// NameRuleTable matches a name against any of its rules.
type NameRuleTable struct {
	rules           []NameRule
	caseInsensitive bool
}

// NewNameRuleTable builds a table. Case-insensitive tables lower-case both the name and the patterns.
func NewNameRuleTable(caseInsensitive bool, rules ...NameRule) NameRuleTable {
	storedRules := make([]NameRule, 0, len(rules))
	for _, rule := range rules {
		if caseInsensitive {
			rule.Pattern = strings.ToLower(rule.Pattern)
		}
		storedRules = append(storedRules, rule)
	}
	return NameRuleTable{rules: storedRules, caseInsensitive: caseInsensitive}
}

// Matches reports whether any rule matches name.
func (table NameRuleTable) Matches(name string) bool {
	if table.caseInsensitive {
		name = strings.ToLower(name)
	}
	for _, rule := range table.rules {
		if rule.Matches(name) {
			return true
		}
	}
	return false
}

func prefixRules(patterns ...string) []NameRule {
	return rulesOfKind(NameMatchPrefix, patterns)
}

func suffixRules(patterns ...string) []NameRule {
	return rulesOfKind(NameMatchSuffix, patterns)
}

func substringRules(patterns ...string) []NameRule {
	return rulesOfKind(NameMatchSubstring, patterns)
}

func exactRules(patterns ...string) []NameRule {
	return rulesOfKind(NameMatchExact, patterns)
}

func rulesOfKind(kind NameMatchKind, patterns []string) []NameRule {
	rules := make([]NameRule, 0, len(patterns))
	for _, pattern := range patterns {
		rules = append(rules, NameRule{Kind: kind, Pattern: pattern})
	}
	return rules
}

func concatenateRules(ruleGroups ...[]NameRule) []NameRule {
	combined := make([]NameRule, 0)
	for _, ruleGroup := range ruleGroups {
		combined = append(combined, ruleGroup...)
	}
	return combined
}

// CatalogExclusionRules drops meta, patchinfo, installer, and minimal build packages from catalogs.
func CatalogExclusionRules() NameRuleTable {
	return NewNameRuleTable(false, concatenateRules(
		prefixRules("000", "_", "patchinfo.", "skelcd-", "installation-images"),
		suffixRules("-mini"),
	)...)
}

// VendorSpecificRules matches packages that only make sense in the vendor distribution.
func VendorSpecificRules() NameRuleTable {
	return NewNameRuleTable(true, concatenateRules(
		prefixRules(
			"skelcd", "release-notes", "sle-", "sle_", "sle15", "sles15", "suse-migration", "migrate",
			"kernel-livepatch", "patterns", "supportutils-plugin", "lifecycle-data-sle", "sca-patterns",
			"susemanager-", "desktop-data", "sap",
		),
		substringRules("sles", "sled", "sap-", "-sap", "eula"),
		suffixRules("bootstrap", "-caasp", "-sle"),
		exactRules("suse-build-key", "suse-hpc", "zypper-search-packages-plugin", "python-ibus"),
	)...)
}

// ExceptionRules matches binaries that are never reported as obsolete.
func ExceptionRules() NameRuleTable {
	return NewNameRuleTable(false, concatenateRules(
		prefixRules("python2", "python3", "preinstallimage-"),
		suffixRules("-bootstrap"),
		substringRules("Tumbleweed", "metis"),
	)...)
}

// ReleasePackageRules matches the distribution release packages, which always stay on the media.
func ReleasePackageRules() NameRuleTable {
	return NewNameRuleTable(false, exactRules("openSUSE-release", "openSUSE-release-ftp", "openSUSE-Addon-NonOss-release")...)
}
