package buildservice

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/distkeeper/internal/execshell"
)

const (
	transportHTTPValueConstant                 = "http"
	transportOscValueConstant                  = "osc"
	defaultAPIURLConstant                      = "https://api.opensuse.org"
	unsupportedTransportTemplateConstant       = "unsupported transport %q"
	credentialResolutionTemplateConstant       = "unable to resolve build service password: %w"
	shellExecutorCreationTemplateConstant      = "unable to prepare osc executor: %w"
	transportFieldNameConstant                 = "transport"
	defaultTransportConfigurationConstant      = transportHTTPValueConstant
	defaultRequestTimeoutConfigurationConstant = defaultRequestTimeoutConstant
)

// TransportName selects how requests reach the build service.
type TransportName string

// Supported transports.
const (
	TransportHTTP TransportName = TransportName(transportHTTPValueConstant)
	TransportOsc  TransportName = TransportName(transportOscValueConstant)
)

// TransportNames lists the supported transports in display order.
func TransportNames() []string {
	return []string{string(TransportHTTP), string(TransportOsc)}
}

// ServiceConfiguration describes the build service endpoint and credentials.
type ServiceConfiguration struct {
	APIURL         string           `mapstructure:"api_url"`
	Transport      TransportName    `mapstructure:"transport"`
	UserName       string           `mapstructure:"username"`
	PasswordSource CredentialSource `mapstructure:"password_source"`
	RequestTimeout time.Duration    `mapstructure:"request_timeout"`
}

// DefaultServiceConfiguration returns the baseline endpoint settings.
func DefaultServiceConfiguration() ServiceConfiguration {
	return ServiceConfiguration{
		APIURL:         defaultAPIURLConstant,
		Transport:      TransportName(defaultTransportConfigurationConstant),
		RequestTimeout: defaultRequestTimeoutConfigurationConstant,
	}
}

// Sanitize trims values and fills in defaults for blank fields.
func (configuration ServiceConfiguration) Sanitize() ServiceConfiguration {
	defaults := DefaultServiceConfiguration()
	sanitized := configuration
	sanitized.APIURL = strings.TrimSpace(sanitized.APIURL)
	if len(sanitized.APIURL) == 0 {
		sanitized.APIURL = defaults.APIURL
	}
	sanitized.Transport = TransportName(strings.ToLower(strings.TrimSpace(string(sanitized.Transport))))
	if len(sanitized.Transport) == 0 {
		sanitized.Transport = defaults.Transport
	}
	sanitized.UserName = strings.TrimSpace(sanitized.UserName)
	if sanitized.RequestTimeout <= 0 {
		sanitized.RequestTimeout = defaults.RequestTimeout
	}
	return sanitized
}

// ClientFactory builds a Client for the configured transport.
type ClientFactory struct {
	Logger             *zap.Logger
	CredentialResolver CredentialResolver
	CommandRunner      execshell.CommandRunner
	HTTPClient         *http.Client
}

// Create constructs the Client selected by configuration.Transport.
func (factory ClientFactory) Create(executionContext context.Context, configuration ServiceConfiguration) (*Client, error) {
	sanitized := configuration.Sanitize()

	logger := factory.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	switch sanitized.Transport {
	case TransportHTTP:
		credentialResolver := factory.CredentialResolver
		if credentialResolver == nil {
			credentialResolver = NewCredentialResolver(nil, nil)
		}
		password, resolutionError := credentialResolver.ResolveCredential(executionContext, sanitized.PasswordSource)
		if resolutionError != nil {
			return nil, fmt.Errorf(credentialResolutionTemplateConstant, resolutionError)
		}
		return NewHTTPClient(HTTPClientConfiguration{
			APIURL:         sanitized.APIURL,
			UserName:       sanitized.UserName,
			Password:       password,
			RequestTimeout: sanitized.RequestTimeout,
			HTTPClient:     factory.HTTPClient,
		}, logger)
	case TransportOsc:
		commandRunner := factory.CommandRunner
		if commandRunner == nil {
			commandRunner = execshell.NewOSCommandRunner()
		}
		shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner)
		if executorError != nil {
			return nil, fmt.Errorf(shellExecutorCreationTemplateConstant, executorError)
		}
		return NewOscClient(shellExecutor, sanitized.APIURL)
	default:
		return nil, InvalidInputError{FieldName: transportFieldNameConstant, Message: fmt.Sprintf(unsupportedTransportTemplateConstant, sanitized.Transport)}
	}
}
