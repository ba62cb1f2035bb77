package obsoletes_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/distkeeper/internal/buildservice"
	"github.com/temirov/distkeeper/internal/obsoletes"
)

const (
	testAPIURLConstant                   = "https://api.example.test"
	testUnknownProjectConstant           = "openSUSE:Leap:15.3"
	testRepositoryFailureMessageConstant = "no credentials"
)

type recordingRepositoryResolver struct {
	repository     buildservice.RepositoryService
	resolveError   error
	configurations []buildservice.ServiceConfiguration
}

func (resolver *recordingRepositoryResolver) Resolve(executionContext context.Context, logger *zap.Logger, configuration buildservice.ServiceConfiguration) (buildservice.RepositoryService, error) {
	resolver.configurations = append(resolver.configurations, configuration)
	if resolver.resolveError != nil {
		return nil, resolver.resolveError
	}
	return resolver.repository, nil
}

func commandConfiguration() obsoletes.Configuration {
	configuration := obsoletes.DefaultConfiguration()
	configuration.Architectures = []string{testArchitectureConstant}
	return configuration
}

func TestObsoletesCommandFlagsOverrideConfiguration(testInstance *testing.T) {
	repository := newScenarioRepository()
	resolver := &recordingRepositoryResolver{repository: repository}
	output := &bytes.Buffer{}

	builder := obsoletes.CommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		ConfigurationProvider: func() obsoletes.Configuration {
			configuration := commandConfiguration()
			configuration.Project = testUnknownProjectConstant
			configuration.Architectures = []string{"s390x"}
			return configuration
		},
		RepositoryResolver: resolver,
		Output:             output,
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetContext(context.Background())
	command.SetArgs([]string{
		"--project", testLeapProjectConstant,
		"--arch", testArchitectureConstant,
		"--print-only",
		"--transport", "OSC",
		"-A", testAPIURLConstant,
	})
	require.NoError(testInstance, command.Execute())

	require.Equal(testInstance, "libgone\n", output.String())
	require.Empty(testInstance, repository.writes)
	require.Len(testInstance, resolver.configurations, 1)
	require.Equal(testInstance, buildservice.TransportOsc, resolver.configurations[0].Transport)
	require.Equal(testInstance, testAPIURLConstant, resolver.configurations[0].APIURL)
	for _, binaryCall := range repository.binaryCalls {
		require.NotContains(testInstance, binaryCall, "s390x")
	}
}

func TestObsoletesCommandUsesConfiguration(testInstance *testing.T) {
	repository := newScenarioRepository()
	resolver := &recordingRepositoryResolver{repository: repository}
	output := &bytes.Buffer{}

	builder := obsoletes.CommandBuilder{
		ConfigurationProvider: commandConfiguration,
		ServiceConfigurationProvider: func() buildservice.ServiceConfiguration {
			return buildservice.ServiceConfiguration{APIURL: testAPIURLConstant}
		},
		RepositoryResolver: resolver,
		Output:             output,
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetContext(context.Background())
	command.SetArgs([]string{})
	require.NoError(testInstance, command.Execute())

	require.Empty(testInstance, output.String())
	require.Len(testInstance, repository.writes, 1)
	require.Equal(testInstance, testLeapProjectConstant, repository.writes[0].project)
	require.Equal(testInstance, testExpectedDocumentConstant, repository.writes[0].content)
	require.Equal(testInstance, buildservice.TransportHTTP, resolver.configurations[0].Transport)
	require.Equal(testInstance, testAPIURLConstant, resolver.configurations[0].APIURL)
}

func TestObsoletesCommandTagsLogsWithProjects(testInstance *testing.T) {
	observerCore, observerLogs := observer.New(zap.DebugLevel)
	builder := obsoletes.CommandBuilder{
		LoggerProvider:        func() *zap.Logger { return zap.New(observerCore) },
		ConfigurationProvider: commandConfiguration,
		ServiceConfigurationProvider: func() buildservice.ServiceConfiguration {
			return buildservice.ServiceConfiguration{APIURL: testAPIURLConstant}
		},
		RepositoryResolver: &recordingRepositoryResolver{repository: newScenarioRepository()},
		Output:             &bytes.Buffer{},
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetContext(context.Background())
	command.SetArgs([]string{"--print-only"})
	require.NoError(testInstance, command.Execute())

	computedEntries := observerLogs.FilterMessage("Computed obsolete binaries").All()
	require.Len(testInstance, computedEntries, 1)
	for _, loggedEntry := range observerLogs.All() {
		require.Equal(testInstance, testLeapProjectConstant, loggedEntry.ContextMap()["target_project"], loggedEntry.Message)
		require.Equal(testInstance, testReferenceProjectConstant, loggedEntry.ContextMap()["reference_project"], loggedEntry.Message)
	}
}

func TestObsoletesCommandErrors(testInstance *testing.T) {
	resolverFailure := errors.New(testRepositoryFailureMessageConstant)
	testCases := []struct {
		name                 string
		arguments            []string
		resolver             *recordingRepositoryResolver
		expectedErrorMessage string
		expectedError        error
	}{
		{
			name:                 "PositionalArguments",
			arguments:            []string{"openSUSE:Factory"},
			resolver:             &recordingRepositoryResolver{repository: newScenarioRepository()},
			expectedErrorMessage: "obsoletes does not accept positional arguments",
		},
		{
			name:                 "ResolverFailure",
			arguments:            []string{},
			resolver:             &recordingRepositoryResolver{resolveError: resolverFailure},
			expectedErrorMessage: "unable to connect to the build service: " + testRepositoryFailureMessageConstant,
			expectedError:        resolverFailure,
		},
		{
			name:                 "UnsupportedTransport",
			arguments:            []string{"--transport", "ftp"},
			resolver:             &recordingRepositoryResolver{repository: newScenarioRepository()},
			expectedErrorMessage: "unsupported value \"ftp\"",
		},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			builder := obsoletes.CommandBuilder{
				ConfigurationProvider: commandConfiguration,
				RepositoryResolver:    testCase.resolver,
				Output:                &bytes.Buffer{},
			}
			command, buildError := builder.Build()
			require.NoError(subTest, buildError)
			command.SilenceUsage = true
			command.SilenceErrors = true
			command.SetContext(context.Background())
			command.SetArgs(testCase.arguments)

			executionError := command.Execute()
			require.Error(subTest, executionError)
			require.Contains(subTest, executionError.Error(), testCase.expectedErrorMessage)
			if testCase.expectedError != nil {
				require.ErrorIs(subTest, executionError, testCase.expectedError)
			}
		})
	}
}
