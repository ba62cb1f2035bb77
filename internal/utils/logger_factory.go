package utils

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugStringConstant          = "debug"
	logLevelInfoStringConstant           = "info"
	logLevelWarnStringConstant           = "warn"
	logLevelErrorStringConstant          = "error"
	logFormatStructuredStringConstant    = "structured"
	logFormatConsoleStringConstant       = "console"
	jsonZapEncodingStringConstant        = "json"
	consoleZapEncodingStringConstant     = "console"
	standardErrorOutputPathConstant      = "stderr"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Exported log level constants for reuse across packages.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Exported log format constants for reuse across packages.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
)

// LoggerConfiguration selects the level, encoding, destinations, and constant fields of a logger.
type LoggerConfiguration struct {
	Level  LogLevel
	Format LogFormat
	// OutputPaths defaults to standard error so standard output stays reserved for command results.
	OutputPaths []string
	// Fields are attached to every entry, e.g. the build service endpoint a run talks to.
	Fields map[string]string
}

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct{}

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

var logFormatEncodingMapping = map[LogFormat]string{
	LogFormatStructured: jsonZapEncodingStringConstant,
	LogFormatConsole:    consoleZapEncodingStringConstant,
}

// NewLoggerFactory constructs a new logger factory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// CreateLogger produces a zap.Logger for loggerConfiguration. Level and format are matched case-insensitively.
func (factory *LoggerFactory) CreateLogger(loggerConfiguration LoggerConfiguration) (*zap.Logger, error) {
	normalizedLogLevel := LogLevel(strings.ToLower(strings.TrimSpace(string(loggerConfiguration.Level))))
	zapLogLevel, levelExists := logLevelMapping[normalizedLogLevel]
	if !levelExists {
		return nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, loggerConfiguration.Level)
	}

	normalizedLogFormat := LogFormat(strings.ToLower(strings.TrimSpace(string(loggerConfiguration.Format))))
	encoding, formatExists := logFormatEncodingMapping[normalizedLogFormat]
	if !formatExists {
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, loggerConfiguration.Format)
	}

	zapConfiguration := zap.NewProductionConfig()
	zapConfiguration.Level = zap.NewAtomicLevelAt(zapLogLevel)
	zapConfiguration.Encoding = encoding
	zapConfiguration.OutputPaths = []string{standardErrorOutputPathConstant}
	zapConfiguration.ErrorOutputPaths = []string{standardErrorOutputPathConstant}
	if len(loggerConfiguration.OutputPaths) > 0 {
		zapConfiguration.OutputPaths = append([]string{}, loggerConfiguration.OutputPaths...)
	}
	if normalizedLogFormat == LogFormatConsole {
		zapConfiguration.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		zapConfiguration.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	logger, buildError := zapConfiguration.Build()
	if buildError != nil {
		return nil, buildError
	}

	return logger.With(sortedFields(loggerConfiguration.Fields)...), nil
}

// sortedFields converts fields to zap fields in key order, skipping blank values.
func sortedFields(fields map[string]string) []zap.Field {
	fieldNames := make([]string, 0, len(fields))
	for fieldName, fieldValue := range fields {
		if len(strings.TrimSpace(fieldName)) == 0 || len(strings.TrimSpace(fieldValue)) == 0 {
			continue
		}
		fieldNames = append(fieldNames, fieldName)
	}
	sort.Strings(fieldNames)

	zapFields := make([]zap.Field, 0, len(fieldNames))
	for _, fieldName := range fieldNames {
		zapFields = append(zapFields, zap.String(fieldName, strings.TrimSpace(fields[fieldName])))
	}
	return zapFields
}
