package execshell

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildStartedMessageDescribesOscAPICalls(t *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		expectedMessage string
	}{
		{
			name:            "PackageListing",
			arguments:       []string{"-A", "https://api.opensuse.org", "api", "/source/openSUSE:Leap:15.4?expand=1"},
			expectedMessage: "Listing packages in openSUSE:Leap:15.4",
		},
		{
			name:            "BinaryListing",
			arguments:       []string{"api", "/build/SUSE:SLE-15:GA/pool/x86_64?view=binaryversions"},
			expectedMessage: "Listing binaries built in SUSE:SLE-15:GA/pool/x86_64",
		},
		{
			name:            "MetaRead",
			arguments:       []string{"api", "/source/SUSE:SLE-15-SP4:GA/hdf5/_meta"},
			expectedMessage: "Reading metadata of SUSE:SLE-15-SP4:GA/hdf5",
		},
		{
			name:            "LinkRead",
			arguments:       []string{"api", "/source/SUSE:SLE-15:Update/hdf5?withlinked=1"},
			expectedMessage: "Resolving link of SUSE:SLE-15:Update/hdf5",
		},
		{
			name:            "FileRead",
			arguments:       []string{"api", "/source/openSUSE:Leap:15.4/000package-groups/NON_FTP_PACKAGES.group?expand=1"},
			expectedMessage: "Reading NON_FTP_PACKAGES.group from openSUSE:Leap:15.4/000package-groups",
		},
		{
			name:            "FileWrite",
			arguments:       []string{"api", "-X", "put", "-f", "/dev/stdin", "/source/openSUSE:Leap:15.4/000package-groups/NON_FTP_PACKAGES.group?comment=Update"},
			expectedMessage: "Uploading NON_FTP_PACKAGES.group to openSUSE:Leap:15.4/000package-groups",
		},
		{
			name:            "FileWriteThroughExplicitEndpoint",
			arguments:       []string{"-A", "https://api.opensuse.org", "api", "-X", "PUT", "-f", "/dev/stdin", "/source/openSUSE:Leap:15.4/000package-groups/NON_FTP_PACKAGES.group?comment=Update"},
			expectedMessage: "Uploading NON_FTP_PACKAGES.group to openSUSE:Leap:15.4/000package-groups",
		},
		{
			name:            "UnrecognizedFallsBackToGenericMessage",
			arguments:       []string{"version"},
			expectedMessage: "Running osc version",
		},
	}

	formatter := CommandMessageFormatter{}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			command := ShellCommand{Name: CommandOsc, Details: CommandDetails{Arguments: testCase.arguments}}
			require.Equal(t, testCase.expectedMessage, formatter.BuildStartedMessage(command))
		})
	}
}

func TestBuildExecutionFailureMessageForUnknownCommand(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{Name: CommandName("rpm"), Details: CommandDetails{Arguments: []string{"-qa"}}}

	require.Equal(t, "rpm -qa failed: boom", formatter.BuildExecutionFailureMessage(command, errors.New("boom")))
	require.Equal(t, "rpm -qa failed: unknown error", formatter.BuildExecutionFailureMessage(command, nil))
}

func TestFormatCommandLabelAbbreviatesLongArguments(t *testing.T) {
	formatter := CommandMessageFormatter{}
	longArgument := strings.Repeat("x", 500)
	command := ShellCommand{Name: CommandOsc, Details: CommandDetails{Arguments: []string{"-d", longArgument}}}

	label := formatter.formatCommandLabel(command)
	require.Less(t, len(label), 200)
	require.True(t, strings.HasSuffix(label, "..."))
}
