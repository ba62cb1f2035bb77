package buildservice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

const (
	notFoundMessageConstant                 = "not found"
	apiErrorTemplateConstant                = "%s returned HTTP %d"
	apiErrorWithSummaryTemplateConstant     = "%s returned HTTP %d: %s"
	operationErrorTemplateConstant          = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	requiredValueMessageConstant            = "value required"
	projectFieldNameConstant                = "project"
	packageFieldNameConstant                = "package"
	repositoryFieldNameConstant             = "repository"
	architectureFieldNameConstant           = "architecture"
	fileFieldNameConstant                   = "file"
	listPackagesOperationNameConstant       = OperationName("ListPackages")
	listBinariesOperationNameConstant       = OperationName("ListBinaries")
	resolveLinkOperationNameConstant        = OperationName("ResolveLink")
	getPackageOriginOperationNameConstant   = OperationName("GetPackageOrigin")
	packageExistsOperationNameConstant      = OperationName("PackageExists")
	readFileOperationNameConstant           = OperationName("ReadFile")
	writeFileOperationNameConstant          = OperationName("WriteFile")
	transportNotConfiguredMessageConstant   = "build service transport not configured"
	notFoundStatusCodeConstant              = http.StatusNotFound
)

// OperationName identifies a repository operation in errors and logs.
type OperationName string

// PackageEntry is one package listed in a project.
type PackageEntry struct {
	Name          string
	OriginProject string
}

// BinaryEntry is one file built for a package in a repository and architecture.
type BinaryEntry struct {
	OwnerPackage string
	FileName     string
}

// LinkInfo describes the package a source package links to.
type LinkInfo struct {
	LinkedProject string
	LinkedPackage string
	Present       bool
}

// PackageOrigin names the project and package a package is maintained in.
type PackageOrigin struct {
	OriginProject string
	OriginPackage string
}

// RepositoryService is the set of build service operations used by the maintenance commands.
type RepositoryService interface {
	ListPackages(executionContext context.Context, project string, expand bool) ([]PackageEntry, error)
	ListBinaries(executionContext context.Context, project string, repository string, architecture string) ([]BinaryEntry, error)
	ResolveLink(executionContext context.Context, project string, packageName string) (LinkInfo, error)
	GetPackageOrigin(executionContext context.Context, project string, packageName string) (PackageOrigin, error)
	PackageExists(executionContext context.Context, project string, packageName string) (bool, error)
	ReadFile(executionContext context.Context, project string, packageName string, fileName string) (string, bool, error)
	WriteFile(executionContext context.Context, project string, packageName string, fileName string, content string, comment string) error
}

var (
	// ErrNotFound reports a project, package, or file that does not exist.
	ErrNotFound = errors.New(notFoundMessageConstant)
	// ErrTransportNotConfigured indicates the client was constructed without a transport.
	ErrTransportNotConfigured = errors.New(transportNotConfiguredMessageConstant)
)

// APIError reports a request answered with a non-success HTTP status.
type APIError struct {
	Operation  OperationName
	StatusCode int
	Summary    string
}

// Error describes the failed request.
func (apiError APIError) Error() string {
	if len(apiError.Summary) == 0 {
		return fmt.Sprintf(apiErrorTemplateConstant, apiError.Operation, apiError.StatusCode)
	}
	return fmt.Sprintf(apiErrorWithSummaryTemplateConstant, apiError.Operation, apiError.StatusCode, apiError.Summary)
}

// Is matches ErrNotFound for 404 responses.
func (apiError APIError) Is(target error) bool {
	return target == ErrNotFound && apiError.StatusCode == notFoundStatusCodeConstant
}

// OperationError wraps transport failures that never produced an HTTP status.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates a response body that is not the expected XML document.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying XML error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}
