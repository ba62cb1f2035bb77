package buildservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
)

const (
	credentialSourceSeparatorConstant            = ":"
	environmentCredentialSourceTypeValueConstant = "env"
	fileCredentialSourceTypeValueConstant        = "file"
	environmentNameMissingErrorMessageConstant   = "environment variable name must be provided"
	filePathMissingErrorMessageConstant          = "credential file path must be provided"
	environmentCredentialMissingTemplateConstant = "environment variable %s is not set"
	credentialFileReadErrorTemplateConstant      = "unable to read credential file %s: %w"
	credentialFileEmptyErrorTemplateConstant     = "credential file %s is empty"
	unsupportedCredentialSourceTemplateConstant  = "unsupported credential source type %q"
)

// CredentialSourceType enumerates the supported password retrieval mechanisms.
type CredentialSourceType string

// Credential source type enumerations.
const (
	CredentialSourceTypeEnvironment CredentialSourceType = CredentialSourceType(environmentCredentialSourceTypeValueConstant)
	CredentialSourceTypeFile        CredentialSourceType = CredentialSourceType(fileCredentialSourceTypeValueConstant)
)

// CredentialSource specifies where a password is read from. The zero value means no password.
type CredentialSource struct {
	Type      CredentialSourceType
	Reference string
}

// IsZero reports whether the source is unset.
func (source CredentialSource) IsZero() bool {
	return len(source.Type) == 0 && len(source.Reference) == 0
}

// String renders the source in the "type:reference" form accepted by ParseCredentialSource.
func (source CredentialSource) String() string {
	if source.IsZero() {
		return ""
	}
	return string(source.Type) + credentialSourceSeparatorConstant + source.Reference
}

// CredentialResolver retrieves secrets from configured sources.
type CredentialResolver interface {
	ResolveCredential(resolutionContext context.Context, source CredentialSource) (string, error)
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// FileReader reads the contents of a file path.
type FileReader func(path string) ([]byte, error)

// NewCredentialResolver creates a resolver with optional dependency overrides.
func NewCredentialResolver(environmentLookup EnvironmentLookup, fileReader FileReader) CredentialResolver {
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}
	if fileReader == nil {
		fileReader = os.ReadFile
	}
	return &credentialResolver{environmentLookup: environmentLookup, fileReader: fileReader}
}

// ParseCredentialSource interprets "env:NAME", "file:/path", or a bare environment variable name.
// Blank input yields the zero CredentialSource.
func ParseCredentialSource(sourceValue string) (CredentialSource, error) {
	trimmedValue := strings.TrimSpace(sourceValue)
	if len(trimmedValue) == 0 {
		return CredentialSource{}, nil
	}

	components := strings.SplitN(trimmedValue, credentialSourceSeparatorConstant, 2)
	if len(components) == 1 {
		return CredentialSource{Type: CredentialSourceTypeEnvironment, Reference: trimmedValue}, nil
	}

	sourceType := strings.ToLower(strings.TrimSpace(components[0]))
	reference := strings.TrimSpace(components[1])

	switch sourceType {
	case environmentCredentialSourceTypeValueConstant:
		if len(reference) == 0 {
			return CredentialSource{}, errors.New(environmentNameMissingErrorMessageConstant)
		}
		return CredentialSource{Type: CredentialSourceTypeEnvironment, Reference: reference}, nil
	case fileCredentialSourceTypeValueConstant:
		if len(reference) == 0 {
			return CredentialSource{}, errors.New(filePathMissingErrorMessageConstant)
		}
		return CredentialSource{Type: CredentialSourceTypeFile, Reference: reference}, nil
	default:
		return CredentialSource{}, fmt.Errorf(unsupportedCredentialSourceTemplateConstant, sourceType)
	}
}

// CredentialSourceDecodeHook converts configuration strings into CredentialSource values.
func CredentialSourceDecodeHook() mapstructure.DecodeHookFunc {
	credentialSourceType := reflect.TypeOf(CredentialSource{})
	return func(sourceType reflect.Type, targetType reflect.Type, data any) (any, error) {
		if targetType != credentialSourceType || sourceType.Kind() != reflect.String {
			return data, nil
		}
		return ParseCredentialSource(data.(string))
	}
}

type credentialResolver struct {
	environmentLookup EnvironmentLookup
	fileReader        FileReader
}

func (resolver *credentialResolver) ResolveCredential(resolutionContext context.Context, source CredentialSource) (string, error) {
	switch source.Type {
	case "":
		return "", nil
	case CredentialSourceTypeEnvironment:
		value, found := resolver.environmentLookup(source.Reference)
		trimmedValue := strings.TrimSpace(value)
		if !found || len(trimmedValue) == 0 {
			return "", fmt.Errorf(environmentCredentialMissingTemplateConstant, source.Reference)
		}
		return trimmedValue, nil
	case CredentialSourceTypeFile:
		contents, readError := resolver.fileReader(source.Reference)
		if readError != nil {
			return "", fmt.Errorf(credentialFileReadErrorTemplateConstant, source.Reference, readError)
		}
		trimmedValue := strings.TrimSpace(string(contents))
		if len(trimmedValue) == 0 {
			return "", fmt.Errorf(credentialFileEmptyErrorTemplateConstant, source.Reference)
		}
		return trimmedValue, nil
	default:
		return "", fmt.Errorf(unsupportedCredentialSourceTemplateConstant, source.Type)
	}
}
