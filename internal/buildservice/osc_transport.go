package buildservice

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/temirov/distkeeper/internal/execshell"
)

const (
	oscAPIURLFlagConstant                = "-A"
	oscAPISubcommandConstant             = "api"
	oscMethodFlagConstant                = "-X"
	oscFileFlagConstant                  = "-f"
	oscStandardInputPathConstant         = "/dev/stdin"
	executorNotConfiguredMessageConstant = "osc executor not configured"
	oscStatusCodeSubmatchIndexConstant   = 1
)

// oscHTTPErrorPattern matches the status line osc prints when the API answers with an error.
var oscHTTPErrorPattern = regexp.MustCompile(`HTTP Error (\d{3})`)

// ErrExecutorNotConfigured indicates the osc client was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// OscCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type OscCommandExecutor interface {
	ExecuteOsc(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

type oscTransport struct {
	executor OscCommandExecutor
	apiURL   string
}

// NewOscClient constructs a Client that issues requests through "osc api".
// An empty apiURL leaves the choice of instance to the osc configuration.
func NewOscClient(executor OscCommandExecutor, apiURL string) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return newClient(&oscTransport{executor: executor, apiURL: strings.TrimSpace(apiURL)})
}

func (transport *oscTransport) perform(executionContext context.Context, request apiRequest) ([]byte, error) {
	arguments := make([]string, 0, 8)
	if len(transport.apiURL) > 0 {
		arguments = append(arguments, oscAPIURLFlagConstant, transport.apiURL)
	}
	arguments = append(arguments, oscAPISubcommandConstant)
	if request.method != requestMethodReadValueConstant {
		arguments = append(arguments, oscMethodFlagConstant, request.method)
	}

	commandDetails := execshell.CommandDetails{}
	if request.body != nil {
		arguments = append(arguments, oscFileFlagConstant, oscStandardInputPathConstant)
		commandDetails.StandardInput = request.body
	}
	commandDetails.Arguments = append(arguments, request.path())

	executionResult, executionError := transport.executor.ExecuteOsc(executionContext, commandDetails)
	if executionError != nil {
		var failedError execshell.CommandFailedError
		if errors.As(executionError, &failedError) {
			if statusCode, recognized := parseOscStatusCode(failedError.Result.StandardError); recognized {
				return nil, APIError{
					Operation:  request.operation,
					StatusCode: statusCode,
					Summary:    strings.TrimSpace(failedError.Result.StandardError),
				}
			}
		}
		return nil, OperationError{Operation: request.operation, Cause: executionError}
	}

	return []byte(executionResult.StandardOutput), nil
}

func parseOscStatusCode(standardError string) (int, bool) {
	matches := oscHTTPErrorPattern.FindStringSubmatch(standardError)
	if len(matches) <= oscStatusCodeSubmatchIndexConstant {
		return 0, false
	}
	statusCode, conversionError := strconv.Atoi(matches[oscStatusCodeSubmatchIndexConstant])
	if conversionError != nil {
		return 0, false
	}
	return statusCode, true
}
