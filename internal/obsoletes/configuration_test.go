package obsoletes_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/distkeeper/internal/obsoletes"
)

func TestConfigurationSanitize(testInstance *testing.T) {
	defaults := obsoletes.DefaultConfiguration()

	testCases := []struct {
		name          string
		configuration obsoletes.Configuration
		assert        func(*testing.T, obsoletes.Configuration)
	}{
		{
			name:          "BlankFallsBackToDefaults",
			configuration: obsoletes.Configuration{Parallelism: -3},
			assert: func(subTest *testing.T, sanitized obsoletes.Configuration) {
				require.Equal(subTest, defaults, sanitized)
			},
		},
		{
			name:          "EmptiedAllowlistKeepsBuiltInStacks",
			configuration: obsoletes.Configuration{ExtraAllowlist: []string{" ", ""}},
			assert: func(subTest *testing.T, sanitized obsoletes.Configuration) {
				require.Len(subTest, sanitized.ExtraAllowlist, 26)
				require.Equal(subTest, defaults.ExtraAllowlist, sanitized.ExtraAllowlist)
				require.Contains(subTest, sanitized.ExtraAllowlist, "python-numpy")
			},
		},
		{
			name: "ValuesAreTrimmedAndDeduplicated",
			configuration: obsoletes.Configuration{
				Project:        "  openSUSE:Leap:15.5 ",
				Architectures:  []string{" x86_64", "aarch64", "x86_64", " "},
				ExtraAllowlist: []string{"hdf5", " hdf5 "},
				SkipList:       obsoletes.SkipListConfiguration{File: " OBSOLETE.group "},
				Parallelism:    8,
			},
			assert: func(subTest *testing.T, sanitized obsoletes.Configuration) {
				require.Equal(subTest, "openSUSE:Leap:15.5", sanitized.Project)
				require.Equal(subTest, defaults.ReferenceProject, sanitized.ReferenceProject)
				require.Equal(subTest, []string{"x86_64", "aarch64"}, sanitized.Architectures)
				require.Equal(subTest, []string{"hdf5"}, sanitized.ExtraAllowlist)
				require.Equal(subTest, "OBSOLETE.group", sanitized.SkipList.File)
				require.Equal(subTest, defaults.SkipList.Package, sanitized.SkipList.Package)
				require.Equal(subTest, 8, sanitized.Parallelism)
			},
		},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			testCase.assert(subTest, testCase.configuration.Sanitize())
		})
	}
}

func TestOptionsFromConfigurationPublishesIntoTargetProject(testInstance *testing.T) {
	configuration := obsoletes.DefaultConfiguration()
	configuration.Project = "openSUSE:Leap:15.5"
	configuration.PrintOnly = true

	options := obsoletes.OptionsFromConfiguration(configuration)
	require.Equal(testInstance, "openSUSE:Leap:15.5", options.Project)
	require.Equal(testInstance, "openSUSE:Leap:15.5/000package-groups/NON_FTP_PACKAGES.group", options.SkipList.String())
	require.Equal(testInstance, "Update the skip list", options.SkipList.Comment)
	require.True(testInstance, options.PrintOnly)
	require.Len(testInstance, options.ExtraAllowlist, 26)
}
