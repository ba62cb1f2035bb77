package obsoletes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/distkeeper/internal/buildservice"
	"github.com/temirov/distkeeper/internal/utils/flags"
)

const (
	commandUseConstant                        = "obsoletes"
	commandShortDescriptionConstant           = "Publish the skip list of obsolete binaries"
	commandLongDescriptionConstant            = "obsoletes finds binaries that no current source package of the target project builds anymore and publishes them as the skip list that keeps them off the distribution media."
	unexpectedArgumentsErrorMessageConstant   = "obsoletes does not accept positional arguments"
	commandExecutionErrorTemplateConstant     = "obsoletes failed: %w"
	repositoryResolutionErrorTemplateConstant = "unable to connect to the build service: %w"
	projectFlagNameConstant                   = "project"
	projectFlagShorthandConstant              = "p"
	projectFlagDescriptionConstant            = "Target project whose skip list is computed"
	referenceProjectFlagNameConstant          = "reference-project"
	referenceProjectFlagDescriptionConstant   = "Reference distribution project"
	architectureFlagNameConstant              = "arch"
	architectureFlagDescriptionConstant       = "Architectures to inspect (repeatable or comma separated)"
	printOnlyFlagNameConstant                 = "print-only"
	printOnlyFlagShorthandConstant            = "t"
	printOnlyFlagDescriptionConstant          = "Print the obsolete binaries without publishing the skip list"
	verboseFlagNameConstant                   = "verbose"
	verboseFlagShorthandConstant              = "v"
	verboseFlagDescriptionConstant            = "Print each obsolete binary"
	parallelismFlagNameConstant               = "parallelism"
	parallelismFlagDescriptionConstant        = "Number of concurrent build result requests"
	apiURLFlagNameConstant                    = "api-url"
	apiURLFlagShorthandConstant               = "A"
	apiURLFlagDescriptionConstant             = "Build service API URL"
	transportFlagNameConstant                 = "transport"
	transportFlagDescriptionConstant          = "How to reach the build service"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current obsoletes configuration.
type ConfigurationProvider func() Configuration

// ServiceConfigurationProvider returns the current build service configuration.
type ServiceConfigurationProvider func() buildservice.ServiceConfiguration

// RepositoryServiceResolver creates the repository service used by the command.
type RepositoryServiceResolver interface {
	Resolve(executionContext context.Context, logger *zap.Logger, configuration buildservice.ServiceConfiguration) (buildservice.RepositoryService, error)
}

// DefaultRepositoryServiceResolver builds repository services with buildservice.ClientFactory.
type DefaultRepositoryServiceResolver struct {
	Factory buildservice.ClientFactory
}

// Resolve creates a client for the configured transport.
func (resolver DefaultRepositoryServiceResolver) Resolve(executionContext context.Context, logger *zap.Logger, configuration buildservice.ServiceConfiguration) (buildservice.RepositoryService, error) {
	factory := resolver.Factory
	factory.Logger = logger
	client, creationError := factory.Create(executionContext, configuration)
	if creationError != nil {
		return nil, creationError
	}
	return client, nil
}

// CommandBuilder assembles the obsoletes command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        ConfigurationProvider
	ServiceConfigurationProvider ServiceConfigurationProvider
	RepositoryResolver           RepositoryServiceResolver
	Output                       io.Writer
}

type commandFlagValues struct {
	printOnly bool
	verbose   bool
	transport string
}

// Build constructs the obsoletes command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	flagValues := &commandFlagValues{}

	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, flagValues)
		},
	}

	command.Flags().StringP(projectFlagNameConstant, projectFlagShorthandConstant, "", projectFlagDescriptionConstant)
	command.Flags().String(referenceProjectFlagNameConstant, "", referenceProjectFlagDescriptionConstant)
	command.Flags().StringSlice(architectureFlagNameConstant, nil, architectureFlagDescriptionConstant)
	command.Flags().Int(parallelismFlagNameConstant, 0, parallelismFlagDescriptionConstant)
	command.Flags().StringP(apiURLFlagNameConstant, apiURLFlagShorthandConstant, "", apiURLFlagDescriptionConstant)
	flags.AddToggleFlag(command.Flags(), &flagValues.printOnly, printOnlyFlagNameConstant, printOnlyFlagShorthandConstant, false, printOnlyFlagDescriptionConstant)
	flags.AddToggleFlag(command.Flags(), &flagValues.verbose, verboseFlagNameConstant, verboseFlagShorthandConstant, false, verboseFlagDescriptionConstant)
	flags.AddChoiceFlag(command.Flags(), &flagValues.transport, transportFlagNameConstant, string(buildservice.TransportHTTP), buildservice.TransportNames(), transportFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string, flagValues *commandFlagValues) error {
	if len(arguments) > 0 {
		return errors.New(unexpectedArgumentsErrorMessageConstant)
	}

	options, optionsError := builder.parseOptions(command, flagValues)
	if optionsError != nil {
		return optionsError
	}
	serviceConfiguration, serviceConfigurationError := builder.parseServiceConfiguration(command, flagValues)
	if serviceConfigurationError != nil {
		return serviceConfigurationError
	}

	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}

	logger := builder.resolveLogger().With(
		zap.String(logFieldTargetProjectConstant, options.Project),
		zap.String(logFieldReferenceProjectConstant, options.ReferenceProject),
	)
	repository, resolutionError := builder.resolveRepositoryResolver().Resolve(executionContext, logger, serviceConfiguration)
	if resolutionError != nil {
		return fmt.Errorf(repositoryResolutionErrorTemplateConstant, resolutionError)
	}

	output := builder.Output
	if output == nil {
		output = command.OutOrStdout()
	}

	service, serviceError := NewService(logger, repository, output)
	if serviceError != nil {
		return serviceError
	}

	if _, runError := service.Run(executionContext, options); runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, flagValues *commandFlagValues) (Options, error) {
	configuration := builder.resolveConfiguration()

	projectFlagValue, projectFlagError := command.Flags().GetString(projectFlagNameConstant)
	if projectFlagError != nil {
		return Options{}, projectFlagError
	}
	configuration.Project = selectStringValue(projectFlagValue, configuration.Project)

	referenceProjectFlagValue, referenceProjectFlagError := command.Flags().GetString(referenceProjectFlagNameConstant)
	if referenceProjectFlagError != nil {
		return Options{}, referenceProjectFlagError
	}
	configuration.ReferenceProject = selectStringValue(referenceProjectFlagValue, configuration.ReferenceProject)

	if command.Flags().Changed(architectureFlagNameConstant) {
		architectureFlagValues, architectureFlagError := command.Flags().GetStringSlice(architectureFlagNameConstant)
		if architectureFlagError != nil {
			return Options{}, architectureFlagError
		}
		configuration.Architectures = architectureFlagValues
	}

	if command.Flags().Changed(parallelismFlagNameConstant) {
		parallelismFlagValue, parallelismFlagError := command.Flags().GetInt(parallelismFlagNameConstant)
		if parallelismFlagError != nil {
			return Options{}, parallelismFlagError
		}
		configuration.Parallelism = parallelismFlagValue
	}

	if command.Flags().Changed(printOnlyFlagNameConstant) {
		configuration.PrintOnly = flagValues.printOnly
	}
	if command.Flags().Changed(verboseFlagNameConstant) {
		configuration.Verbose = flagValues.verbose
	}

	return OptionsFromConfiguration(configuration), nil
}

func (builder *CommandBuilder) parseServiceConfiguration(command *cobra.Command, flagValues *commandFlagValues) (buildservice.ServiceConfiguration, error) {
	serviceConfiguration := buildservice.DefaultServiceConfiguration()
	if builder.ServiceConfigurationProvider != nil {
		serviceConfiguration = builder.ServiceConfigurationProvider()
	}

	apiURLFlagValue, apiURLFlagError := command.Flags().GetString(apiURLFlagNameConstant)
	if apiURLFlagError != nil {
		return buildservice.ServiceConfiguration{}, apiURLFlagError
	}
	serviceConfiguration.APIURL = selectStringValue(apiURLFlagValue, serviceConfiguration.APIURL)

	if command.Flags().Changed(transportFlagNameConstant) {
		serviceConfiguration.Transport = buildservice.TransportName(flagValues.transport)
	}

	return serviceConfiguration.Sanitize(), nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveRepositoryResolver() RepositoryServiceResolver {
	if builder.RepositoryResolver != nil {
		return builder.RepositoryResolver
	}
	return DefaultRepositoryServiceResolver{}
}

func selectStringValue(flagValue string, configurationValue string) string {
	trimmedFlagValue := strings.TrimSpace(flagValue)
	if len(trimmedFlagValue) > 0 {
		return trimmedFlagValue
	}

	return strings.TrimSpace(configurationValue)
}
