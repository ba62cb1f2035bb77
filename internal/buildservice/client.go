package buildservice

import (
	"context"
	"errors"
	"strings"
)

// requestTransport performs one API call and returns the response body.
// Failures carrying an HTTP status are reported as APIError.
type requestTransport interface {
	perform(executionContext context.Context, request apiRequest) ([]byte, error)
}

// Client implements RepositoryService on top of a request transport.
type Client struct {
	transport requestTransport
}

func newClient(transport requestTransport) (*Client, error) {
	if transport == nil {
		return nil, ErrTransportNotConfigured
	}
	return &Client{transport: transport}, nil
}

// ListPackages lists the packages of a project.
func (client *Client) ListPackages(executionContext context.Context, project string, expand bool) ([]PackageEntry, error) {
	if validationError := requireValues(projectFieldNameConstant, project); validationError != nil {
		return nil, validationError
	}

	payload, requestError := client.transport.perform(executionContext, newPackageListRequest(project, expand))
	if requestError != nil {
		return nil, requestError
	}
	return decodePackageEntries(payload)
}

// ListBinaries lists the binaries built for a project repository and architecture.
func (client *Client) ListBinaries(executionContext context.Context, project string, repository string, architecture string) ([]BinaryEntry, error) {
	if validationError := requireValues(projectFieldNameConstant, project, repositoryFieldNameConstant, repository, architectureFieldNameConstant, architecture); validationError != nil {
		return nil, validationError
	}

	payload, requestError := client.transport.perform(executionContext, newBinaryListRequest(project, repository, architecture))
	if requestError != nil {
		return nil, requestError
	}
	return decodeBinaryEntries(payload)
}

// ResolveLink reports the link target of a package. Present is false for packages that do not link.
func (client *Client) ResolveLink(executionContext context.Context, project string, packageName string) (LinkInfo, error) {
	if validationError := requireValues(projectFieldNameConstant, project, packageFieldNameConstant, packageName); validationError != nil {
		return LinkInfo{}, validationError
	}

	payload, requestError := client.transport.perform(executionContext, newLinkInfoRequest(project, packageName))
	if requestError != nil {
		return LinkInfo{}, requestError
	}
	return decodeLinkInfo(payload)
}

// GetPackageOrigin reads the project and name recorded in the package metadata.
func (client *Client) GetPackageOrigin(executionContext context.Context, project string, packageName string) (PackageOrigin, error) {
	if validationError := requireValues(projectFieldNameConstant, project, packageFieldNameConstant, packageName); validationError != nil {
		return PackageOrigin{}, validationError
	}

	payload, requestError := client.transport.perform(executionContext, newPackageMetaRequest(getPackageOriginOperationNameConstant, project, packageName))
	if requestError != nil {
		return PackageOrigin{}, requestError
	}
	return decodePackageOrigin(payload)
}

// PackageExists reports whether the package metadata can be read.
func (client *Client) PackageExists(executionContext context.Context, project string, packageName string) (bool, error) {
	if validationError := requireValues(projectFieldNameConstant, project, packageFieldNameConstant, packageName); validationError != nil {
		return false, validationError
	}

	_, requestError := client.transport.perform(executionContext, newPackageMetaRequest(packageExistsOperationNameConstant, project, packageName))
	if requestError != nil {
		if errors.Is(requestError, ErrNotFound) {
			return false, nil
		}
		return false, requestError
	}
	return true, nil
}

// ReadFile returns the expanded content of a source file. The boolean is false when the file does not exist.
func (client *Client) ReadFile(executionContext context.Context, project string, packageName string, fileName string) (string, bool, error) {
	if validationError := requireValues(projectFieldNameConstant, project, packageFieldNameConstant, packageName, fileFieldNameConstant, fileName); validationError != nil {
		return "", false, validationError
	}

	payload, requestError := client.transport.perform(executionContext, newFileReadRequest(project, packageName, fileName))
	if requestError != nil {
		if errors.Is(requestError, ErrNotFound) {
			return "", false, nil
		}
		return "", false, requestError
	}
	return string(payload), true, nil
}

// WriteFile uploads content to a source file, committing with comment.
func (client *Client) WriteFile(executionContext context.Context, project string, packageName string, fileName string, content string, comment string) error {
	if validationError := requireValues(projectFieldNameConstant, project, packageFieldNameConstant, packageName, fileFieldNameConstant, fileName); validationError != nil {
		return validationError
	}

	_, requestError := client.transport.perform(executionContext, newFileWriteRequest(project, packageName, fileName, content, comment))
	return requestError
}

// requireValues validates field name and value pairs.
func requireValues(fieldNamesAndValues ...string) error {
	for index := 0; index+1 < len(fieldNamesAndValues); index += 2 {
		if len(strings.TrimSpace(fieldNamesAndValues[index+1])) == 0 {
			return InvalidInputError{FieldName: fieldNamesAndValues[index], Message: requiredValueMessageConstant}
		}
	}
	return nil
}
