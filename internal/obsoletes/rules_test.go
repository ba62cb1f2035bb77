package obsoletes_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/distkeeper/internal/obsoletes"
)

func TestNameRuleTables(testInstance *testing.T) {
	testCases := []struct {
		name        string
		table       obsoletes.NameRuleTable
		matching    []string
		notMatching []string
	}{
		{
			name:        "CatalogExclusion",
			table:       obsoletes.CatalogExclusionRules(),
			matching:    []string{"000product", "_project", "patchinfo.26051", "skelcd-openSUSE", "installation-images-openSUSE", "busybox-mini"},
			notMatching: []string{"zypper", "skelcd", "minicom", "mini-httpd"},
		},
		{
			name:        "VendorSpecific",
			table:       obsoletes.VendorSpecificRules(),
			matching:    []string{"SLES15-SP4-release", "sle-module-basesystem-release", "release-notes-sles", "sap-installation-wizard", "saptune", "yast2-sap-scp", "kiwi-templates-SLES", "SLED-release", "sled-branding", "python-ibus", "suse-build-key", "kernel-livepatch-tools", "eulas", "patterns-base", "ca-certificates-bootstrap", "skuba-caasp", "yast2-registration-sle", "Desktop-data-SLE"},
			notMatching: []string{"zypper", "python-ibus-extra", "libsapi", "suse-hpc-extra", "kernel-default", "sleuthkit"},
		},
		{
			name:        "Exceptions",
			table:       obsoletes.ExceptionRules(),
			matching:    []string{"python2-six", "python3-six", "preinstallimage-base", "glibc-bootstrap", "openSUSE-Tumbleweed-branding", "metis-devel", "libmetis5"},
			notMatching: []string{"python-six", "bootstrap-tools", "tumbleweed-cli", "Metis"},
		},
		{
			name:        "ReleasePackages",
			table:       obsoletes.ReleasePackageRules(),
			matching:    []string{"openSUSE-release", "openSUSE-release-ftp", "openSUSE-Addon-NonOss-release"},
			notMatching: []string{"openSUSE-release-dvd", "openSUSE-Addon-NonOss-release-ftp"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			for _, candidate := range testCase.matching {
				require.Truef(testInstance, testCase.table.Matches(candidate), "expected %s to match", candidate)
			}
			for _, candidate := range testCase.notMatching {
				require.Falsef(testInstance, testCase.table.Matches(candidate), "expected %s not to match", candidate)
			}
		})
	}
}

func TestNameRuleKinds(testInstance *testing.T) {
	require.True(testInstance, obsoletes.NameRule{Kind: obsoletes.NameMatchPrefix, Pattern: "lib"}.Matches("libfoo"))
	require.True(testInstance, obsoletes.NameRule{Kind: obsoletes.NameMatchSuffix, Pattern: "-devel"}.Matches("foo-devel"))
	require.True(testInstance, obsoletes.NameRule{Kind: obsoletes.NameMatchSubstring, Pattern: "oo"}.Matches("foo-devel"))
	require.True(testInstance, obsoletes.NameRule{Kind: obsoletes.NameMatchExact, Pattern: "foo"}.Matches("foo"))
	require.False(testInstance, obsoletes.NameRule{Kind: obsoletes.NameMatchExact, Pattern: "foo"}.Matches("Foo"))
	require.False(testInstance, obsoletes.NameRule{Kind: obsoletes.NameMatchKind(99), Pattern: "foo"}.Matches("foo"))

	caseInsensitiveTable := obsoletes.NewNameRuleTable(true, obsoletes.NameRule{Kind: obsoletes.NameMatchPrefix, Pattern: "SLE"})
	require.True(testInstance, caseInsensitiveTable.Matches("sle-foo"))
	require.False(testInstance, obsoletes.NewNameRuleTable(false).Matches("anything"))
}
