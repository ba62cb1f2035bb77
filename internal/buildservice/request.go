package buildservice

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	sourceRootSegmentConstant        = "source"
	buildRootSegmentConstant         = "build"
	metaFileNameConstant             = "_meta"
	expandQueryKeyConstant           = "expand"
	viewQueryKeyConstant             = "view"
	withLinkedQueryKeyConstant       = "withlinked"
	commentQueryKeyConstant          = "comment"
	enabledQueryValueConstant        = "1"
	binaryVersionsViewValueConstant  = "binaryversions"
	requestPathSeparatorConstant     = "/"
	requestQuerySeparatorConstant    = "?"
	requestMethodReadValueConstant   = http.MethodGet
	requestMethodUploadValueConstant = http.MethodPut
)

// apiRequest is a transport-neutral description of one build service API call.
type apiRequest struct {
	operation OperationName
	method    string
	segments  []string
	query     url.Values
	body      []byte
}

// path renders the escaped request path including the encoded query.
func (request apiRequest) path() string {
	escapedSegments := make([]string, 0, len(request.segments))
	for _, segment := range request.segments {
		escapedSegments = append(escapedSegments, url.PathEscape(segment))
	}

	requestPath := requestPathSeparatorConstant + strings.Join(escapedSegments, requestPathSeparatorConstant)
	if len(request.query) == 0 {
		return requestPath
	}
	return requestPath + requestQuerySeparatorConstant + request.query.Encode()
}

func newPackageListRequest(project string, expand bool) apiRequest {
	query := url.Values{}
	if expand {
		query.Set(expandQueryKeyConstant, enabledQueryValueConstant)
	}
	return apiRequest{
		operation: listPackagesOperationNameConstant,
		method:    requestMethodReadValueConstant,
		segments:  []string{sourceRootSegmentConstant, project},
		query:     query,
	}
}

func newBinaryListRequest(project string, repository string, architecture string) apiRequest {
	return apiRequest{
		operation: listBinariesOperationNameConstant,
		method:    requestMethodReadValueConstant,
		segments:  []string{buildRootSegmentConstant, project, repository, architecture},
		query:     url.Values{viewQueryKeyConstant: []string{binaryVersionsViewValueConstant}},
	}
}

func newLinkInfoRequest(project string, packageName string) apiRequest {
	return apiRequest{
		operation: resolveLinkOperationNameConstant,
		method:    requestMethodReadValueConstant,
		segments:  []string{sourceRootSegmentConstant, project, packageName},
		query:     url.Values{withLinkedQueryKeyConstant: []string{enabledQueryValueConstant}},
	}
}

func newPackageMetaRequest(operation OperationName, project string, packageName string) apiRequest {
	return apiRequest{
		operation: operation,
		method:    requestMethodReadValueConstant,
		segments:  []string{sourceRootSegmentConstant, project, packageName, metaFileNameConstant},
	}
}

func newFileReadRequest(project string, packageName string, fileName string) apiRequest {
	return apiRequest{
		operation: readFileOperationNameConstant,
		method:    requestMethodReadValueConstant,
		segments:  []string{sourceRootSegmentConstant, project, packageName, fileName},
		query:     url.Values{expandQueryKeyConstant: []string{enabledQueryValueConstant}},
	}
}

func newFileWriteRequest(project string, packageName string, fileName string, content string, comment string) apiRequest {
	query := url.Values{}
	if len(strings.TrimSpace(comment)) > 0 {
		query.Set(commentQueryKeyConstant, comment)
	}
	return apiRequest{
		operation: writeFileOperationNameConstant,
		method:    requestMethodUploadValueConstant,
		segments:  []string{sourceRootSegmentConstant, project, packageName, fileName},
		query:     query,
		body:      []byte(content),
	}
}
