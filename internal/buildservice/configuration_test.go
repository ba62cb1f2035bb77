package buildservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/distkeeper/internal/buildservice"
	"github.com/temirov/distkeeper/internal/execshell"
)

type staticCommandRunner struct {
	recordedCommands []execshell.ShellCommand
}

func (runner *staticCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return execshell.ExecutionResult{StandardOutput: `<directory/>`}, nil
}

func TestServiceConfigurationSanitize(testInstance *testing.T) {
	sanitized := buildservice.ServiceConfiguration{Transport: " OSC ", UserName: " maintainer "}.Sanitize()
	require.Equal(testInstance, "https://api.opensuse.org", sanitized.APIURL)
	require.Equal(testInstance, buildservice.TransportOsc, sanitized.Transport)
	require.Equal(testInstance, "maintainer", sanitized.UserName)
	require.Equal(testInstance, 60*time.Second, sanitized.RequestTimeout)

	require.Equal(testInstance, buildservice.TransportHTTP, buildservice.ServiceConfiguration{}.Sanitize().Transport)
	require.Equal(testInstance, []string{"http", "osc"}, buildservice.TransportNames())
}

func TestClientFactoryCreatesOscClient(testInstance *testing.T) {
	commandRunner := &staticCommandRunner{}
	factory := buildservice.ClientFactory{Logger: zap.NewNop(), CommandRunner: commandRunner}

	client, creationError := factory.Create(context.Background(), buildservice.ServiceConfiguration{APIURL: testOscAPIURLConstant, Transport: buildservice.TransportOsc})
	require.NoError(testInstance, creationError)

	packageEntries, listError := client.ListPackages(context.Background(), testTargetProjectConstant, true)
	require.NoError(testInstance, listError)
	require.Empty(testInstance, packageEntries)
	require.Len(testInstance, commandRunner.recordedCommands, 1)
	require.Equal(testInstance, execshell.CommandOsc, commandRunner.recordedCommands[0].Name)
}

func TestClientFactoryResolvesHTTPPassword(testInstance *testing.T) {
	factory := buildservice.ClientFactory{
		CredentialResolver: buildservice.NewCredentialResolver(func(string) (string, bool) { return "", false }, nil),
	}

	_, creationError := factory.Create(context.Background(), buildservice.ServiceConfiguration{
		PasswordSource: buildservice.CredentialSource{Type: buildservice.CredentialSourceTypeEnvironment, Reference: "OBS_PASSWORD"},
	})
	require.ErrorContains(testInstance, creationError, "unable to resolve build service password")

	client, defaultError := factory.Create(context.Background(), buildservice.ServiceConfiguration{})
	require.NoError(testInstance, defaultError)
	require.NotNil(testInstance, client)
}

func TestClientFactoryRejectsUnknownTransport(testInstance *testing.T) {
	_, creationError := buildservice.ClientFactory{}.Create(context.Background(), buildservice.ServiceConfiguration{Transport: "ftp"})
	require.IsType(testInstance, buildservice.InvalidInputError{}, creationError)
}
