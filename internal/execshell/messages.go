package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	abbreviatedArgumentLengthConstant       = 120
	abbreviatedArgumentSuffixConstant       = "..."
)

const (
	oscAPISubcommandNameConstant   = "api"
	oscMethodFlagConstant          = "-X"
	oscAPIURLFlagConstant          = "-A"
	oscFileFlagConstant            = "-f"
	oscDefaultMethodConstant       = "GET"
	oscWriteMethodConstant         = "PUT"
	oscPathSeparatorConstant       = "/"
	oscQuerySeparatorConstant      = "?"
	oscSourceRootSegmentConstant   = "source"
	oscBuildRootSegmentConstant    = "build"
	oscMetaFileNameConstant        = "_meta"
	oscWithLinkedQueryFlagConstant = "withlinked"
)

const (
	oscPackageListStartTemplateConstant            = "Listing packages in %s"
	oscPackageListSuccessTemplateConstant          = "Listed packages in %s"
	oscPackageListFailureTemplateConstant          = "Failed to list packages in %s (exit code %d%s)"
	oscPackageListExecutionFailureTemplateConstant = "Unable to list packages in %s: %s"
	oscBinaryListStartTemplateConstant             = "Listing binaries built in %s"
	oscBinaryListSuccessTemplateConstant           = "Listed binaries built in %s"
	oscBinaryListFailureTemplateConstant           = "Failed to list binaries built in %s (exit code %d%s)"
	oscBinaryListExecutionFailureTemplateConstant  = "Unable to list binaries built in %s: %s"
	oscMetaReadStartTemplateConstant               = "Reading metadata of %s"
	oscMetaReadSuccessTemplateConstant             = "Read metadata of %s"
	oscMetaReadFailureTemplateConstant             = "Failed to read metadata of %s (exit code %d%s)"
	oscMetaReadExecutionFailureTemplateConstant    = "Unable to read metadata of %s: %s"
	oscLinkReadStartTemplateConstant               = "Resolving link of %s"
	oscLinkReadSuccessTemplateConstant             = "Resolved link of %s"
	oscLinkReadFailureTemplateConstant             = "Failed to resolve link of %s (exit code %d%s)"
	oscLinkReadExecutionFailureTemplateConstant    = "Unable to resolve link of %s: %s"
	oscFileReadStartTemplateConstant               = "Reading %s from %s"
	oscFileReadSuccessTemplateConstant             = "Read %s from %s"
	oscFileReadFailureTemplateConstant             = "Failed to read %s from %s (exit code %d%s)"
	oscFileReadExecutionFailureTemplateConstant    = "Unable to read %s from %s: %s"
	oscFileWriteStartTemplateConstant              = "Uploading %s to %s"
	oscFileWriteSuccessTemplateConstant            = "Uploaded %s to %s"
	oscFileWriteFailureTemplateConstant            = "Failed to upload %s to %s (exit code %d%s)"
	oscFileWriteExecutionFailureTemplateConstant   = "Unable to upload %s to %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

// oscMessageTemplates groups the four lifecycle templates for one kind of osc api call.
type oscMessageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

var (
	packageListTemplates = oscMessageTemplates{oscPackageListStartTemplateConstant, oscPackageListSuccessTemplateConstant, oscPackageListFailureTemplateConstant, oscPackageListExecutionFailureTemplateConstant}
	binaryListTemplates  = oscMessageTemplates{oscBinaryListStartTemplateConstant, oscBinaryListSuccessTemplateConstant, oscBinaryListFailureTemplateConstant, oscBinaryListExecutionFailureTemplateConstant}
	metaReadTemplates    = oscMessageTemplates{oscMetaReadStartTemplateConstant, oscMetaReadSuccessTemplateConstant, oscMetaReadFailureTemplateConstant, oscMetaReadExecutionFailureTemplateConstant}
	linkReadTemplates    = oscMessageTemplates{oscLinkReadStartTemplateConstant, oscLinkReadSuccessTemplateConstant, oscLinkReadFailureTemplateConstant, oscLinkReadExecutionFailureTemplateConstant}
	fileReadTemplates    = oscMessageTemplates{oscFileReadStartTemplateConstant, oscFileReadSuccessTemplateConstant, oscFileReadFailureTemplateConstant, oscFileReadExecutionFailureTemplateConstant}
	fileWriteTemplates   = oscMessageTemplates{oscFileWriteStartTemplateConstant, oscFileWriteSuccessTemplateConstant, oscFileWriteFailureTemplateConstant, oscFileWriteExecutionFailureTemplateConstant}
)

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandOsc {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	method, pathSegments, query, recognized := formatter.parseOscAPIArguments(command.Details.Arguments)
	if !recognized || len(pathSegments) < 2 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	rootSegment := pathSegments[0]
	subjectSegments := pathSegments[1:]

	switch {
	case rootSegment == oscBuildRootSegmentConstant && method == oscDefaultMethodConstant:
		return formatter.describeOscCall(binaryListTemplates, []string{strings.Join(subjectSegments, oscPathSeparatorConstant)}, result, failure, stage)
	case rootSegment != oscSourceRootSegmentConstant:
		return formatter.buildGenericMessage(command, result, failure, stage)
	case len(subjectSegments) == 1 && method == oscDefaultMethodConstant:
		return formatter.describeOscCall(packageListTemplates, []string{subjectSegments[0]}, result, failure, stage)
	case len(subjectSegments) == 2 && method == oscDefaultMethodConstant && strings.Contains(query, oscWithLinkedQueryFlagConstant):
		return formatter.describeOscCall(linkReadTemplates, []string{strings.Join(subjectSegments, oscPathSeparatorConstant)}, result, failure, stage)
	case len(subjectSegments) == 3 && subjectSegments[2] == oscMetaFileNameConstant && method == oscDefaultMethodConstant:
		return formatter.describeOscCall(metaReadTemplates, []string{strings.Join(subjectSegments[:2], oscPathSeparatorConstant)}, result, failure, stage)
	case len(subjectSegments) == 3 && method == oscDefaultMethodConstant:
		return formatter.describeOscCall(fileReadTemplates, []string{subjectSegments[2], strings.Join(subjectSegments[:2], oscPathSeparatorConstant)}, result, failure, stage)
	case len(subjectSegments) == 3 && method == oscWriteMethodConstant:
		return formatter.describeOscCall(fileWriteTemplates, []string{subjectSegments[2], strings.Join(subjectSegments[:2], oscPathSeparatorConstant)}, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeOscCall(templates oscMessageTemplates, subjects []string, result ExecutionResult, failure error, stage messageStage) string {
	arguments := make([]any, 0, len(subjects)+2)
	for _, subject := range subjects {
		arguments = append(arguments, subject)
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, arguments...)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, arguments...)
	case messageStageFailure:
		arguments = append(arguments, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(templates.failure, arguments...)
	case messageStageExecutionFailure:
		arguments = append(arguments, formatter.describeFailure(failure))
		return fmt.Sprintf(templates.executionFailure, arguments...)
	default:
		return emptyStringConstant
	}
}

// parseOscAPIArguments extracts the HTTP method, path segments, and raw query from "osc [-A url] api [-X METHOD] ... PATH".
func (formatter CommandMessageFormatter) parseOscAPIArguments(arguments []string) (string, []string, string, bool) {
	method := oscDefaultMethodConstant
	apiSubcommandSeen := false
	requestPath := emptyStringConstant

	for index := 0; index < len(arguments); index++ {
		argument := strings.TrimSpace(arguments[index])
		switch argument {
		case oscAPIURLFlagConstant, oscFileFlagConstant:
			index++
			continue
		case oscMethodFlagConstant:
			if index+1 < len(arguments) {
				method = strings.ToUpper(strings.TrimSpace(arguments[index+1]))
			}
			index++
			continue
		case oscAPISubcommandNameConstant:
			if !apiSubcommandSeen {
				apiSubcommandSeen = true
				continue
			}
		}
		if apiSubcommandSeen && strings.HasPrefix(argument, oscPathSeparatorConstant) {
			requestPath = argument
		}
	}

	if !apiSubcommandSeen || len(requestPath) == 0 {
		return emptyStringConstant, nil, emptyStringConstant, false
	}

	query := emptyStringConstant
	if queryIndex := strings.Index(requestPath, oscQuerySeparatorConstant); queryIndex >= 0 {
		query = requestPath[queryIndex+1:]
		requestPath = requestPath[:queryIndex]
	}

	pathSegments := make([]string, 0)
	for _, segment := range strings.Split(requestPath, oscPathSeparatorConstant) {
		if len(segment) > 0 {
			pathSegments = append(pathSegments, segment)
		}
	}

	return method, pathSegments, query, true
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = commandLabel + commandArgumentsJoinSeparatorConstant + strings.Join(formatter.abbreviateArguments(command.Details.Arguments), commandArgumentsJoinSeparatorConstant)
	}
	return commandLabel
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

// abbreviateArguments shortens oversized arguments such as inline request bodies.
func (formatter CommandMessageFormatter) abbreviateArguments(arguments []string) []string {
	abbreviated := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		if len(argument) > abbreviatedArgumentLengthConstant {
			argument = argument[:abbreviatedArgumentLengthConstant] + abbreviatedArgumentSuffixConstant
		}
		abbreviated = append(abbreviated, argument)
	}
	return abbreviated
}
