package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/temirov/distkeeper/internal/utils"
	"github.com/temirov/distkeeper/internal/utils/flags"
)

const (
	configurationCommandUseConstant              = "config"
	configurationCommandShortDescriptionConstant = "Inspect the effective configuration"
	showCommandUseConstant                       = "show"
	showCommandShortDescriptionConstant          = "Print the merged configuration as YAML"
	configurationNotLoadedErrorMessageConstant   = "configuration has not been loaded"
	configurationRenderErrorTemplateConstant     = "unable to render configuration: %w"
	configurationFileCommentTemplateConstant     = "# %s\n"
	defaultsFlagNameConstant                     = "defaults"
	defaultsFlagDescriptionConstant              = "Print the built-in defaults with their comments instead of the merged configuration"
)

type configurationCommandBuilder struct {
	commandContextAccessor utils.CommandContextAccessor
}

// Build constructs the config command with its show subcommand.
func (builder configurationCommandBuilder) Build() *cobra.Command {
	configurationCommand := &cobra.Command{
		Use:   configurationCommandUseConstant,
		Short: configurationCommandShortDescriptionConstant,
	}

	var showDefaults bool
	showCommand := &cobra.Command{
		Use:   showCommandUseConstant,
		Short: showCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			if showDefaults {
				return builder.showDefaults(command)
			}
			return builder.show(command)
		},
	}
	flags.AddToggleFlag(showCommand.Flags(), &showDefaults, defaultsFlagNameConstant, "", false, defaultsFlagDescriptionConstant)
	configurationCommand.AddCommand(showCommand)

	return configurationCommand
}

func (builder configurationCommandBuilder) show(command *cobra.Command) error {
	loadedConfiguration, available := builder.commandContextAccessor.LoadedConfiguration(command.Context())
	if !available {
		return errors.New(configurationNotLoadedErrorMessageConstant)
	}

	renderedConfiguration, renderError := yaml.Marshal(loadedConfiguration.Settings)
	if renderError != nil {
		return fmt.Errorf(configurationRenderErrorTemplateConstant, renderError)
	}

	output := command.OutOrStdout()
	if len(loadedConfiguration.ConfigFileUsed) > 0 {
		if _, writeError := fmt.Fprintf(output, configurationFileCommentTemplateConstant, loadedConfiguration.ConfigFileUsed); writeError != nil {
			return writeError
		}
	}
	_, writeError := output.Write(renderedConfiguration)
	return writeError
}

func (builder configurationCommandBuilder) showDefaults(command *cobra.Command) error {
	defaultConfiguration, _ := EmbeddedDefaultConfiguration()
	_, writeError := command.OutOrStdout().Write(defaultConfiguration)
	return writeError
}
