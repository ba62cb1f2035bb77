package obsoletes_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/distkeeper/internal/obsoletes"
)

func TestParseBinaryFileName(testInstance *testing.T) {
	testCases := []struct {
		name           string
		fileName       string
		expectedBinary obsoletes.Binary
		expectParsed   bool
	}{
		{
			name:           "PlainBinary",
			fileName:       "libhdf5-103-1.10.8-150300.4.3.1.x86_64.rpm",
			expectedBinary: obsoletes.Binary{Name: "libhdf5-103", Version: "1.10.8", Release: "150300.4.3.1", Architecture: "x86_64", Kind: obsoletes.BinaryKindBinary},
			expectParsed:   true,
		},
		{
			name:           "NamespacedBinary",
			fileName:       "container::kernel-default-5.14.21-150400.22.1.aarch64.rpm",
			expectedBinary: obsoletes.Binary{Name: "kernel-default", Version: "5.14.21", Release: "150400.22.1", Architecture: "aarch64", Kind: obsoletes.BinaryKindBinary},
			expectParsed:   true,
		},
		{
			name:           "NoArchBinary",
			fileName:       "python3-six-1.16.0-2.1.noarch.rpm",
			expectedBinary: obsoletes.Binary{Name: "python3-six", Version: "1.16.0", Release: "2.1", Architecture: "noarch", Kind: obsoletes.BinaryKindBinary},
			expectParsed:   true,
		},
		{
			name:           "SourcePackage",
			fileName:       "hdf5-1.10.8-150300.4.3.1.src.rpm",
			expectedBinary: obsoletes.Binary{Name: "hdf5", Version: "1.10.8", Release: "150300.4.3.1", Architecture: "src", Kind: obsoletes.BinaryKindSource},
			expectParsed:   true,
		},
		{
			name:           "NoSourcePackage",
			fileName:       "opera-90.0-1.1.nosrc.rpm",
			expectedBinary: obsoletes.Binary{Name: "opera", Version: "90.0", Release: "1.1", Architecture: "nosrc", Kind: obsoletes.BinaryKindSource},
			expectParsed:   true,
		},
		{
			name:           "DebugInfo",
			fileName:       "libfoo1-debuginfo-2.0-1.1.x86_64.rpm",
			expectedBinary: obsoletes.Binary{Name: "libfoo1-debuginfo", Version: "2.0", Release: "1.1", Architecture: "x86_64", Kind: obsoletes.BinaryKindDebugInfo},
			expectParsed:   true,
		},
		{
			name:           "DebugInfoVariant",
			fileName:       "libfoo1-debuginfo-32bit-2.0-1.1.x86_64.rpm",
			expectedBinary: obsoletes.Binary{Name: "libfoo1-debuginfo-32bit", Version: "2.0", Release: "1.1", Architecture: "x86_64", Kind: obsoletes.BinaryKindDebugInfo},
			expectParsed:   true,
		},
		{
			name:           "DebugSource",
			fileName:       "foo-debugsource-2.0-1.1.s390x.rpm",
			expectedBinary: obsoletes.Binary{Name: "foo-debugsource", Version: "2.0", Release: "1.1", Architecture: "s390x", Kind: obsoletes.BinaryKindDebugSource},
			expectParsed:   true,
		},
		{name: "Statistics", fileName: "_statistics"},
		{name: "BuildLog", fileName: "rpmlint.log"},
		{name: "MissingRelease", fileName: "foo-1.0.x86_64.rpm"},
		{name: "DottedArchitecture", fileName: "foo-1.0-1.x86.64.rpm.sig"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			binary, parsed := obsoletes.ParseBinaryFileName(testCase.fileName)
			require.Equal(testInstance, testCase.expectParsed, parsed)
			if testCase.expectParsed {
				require.Equal(testInstance, testCase.expectedBinary, binary)
				require.Equal(testInstance, testCase.expectedBinary.Kind == obsoletes.BinaryKindBinary, binary.Shippable())
			}
		})
	}
}
