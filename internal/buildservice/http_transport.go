package buildservice

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	apiURLFieldNameConstant                    = "api_url"
	invalidAPIURLTemplateConstant              = "invalid API URL %q"
	requestBuildErrorTemplateConstant          = "unable to build request: %w"
	responseReadErrorTemplateConstant          = "unable to read response: %w"
	defaultRequestTimeoutConstant              = 60 * time.Second
	xmlContentTypeConstant                     = "application/xml"
	contentTypeHeaderConstant                  = "Content-Type"
	acceptHeaderConstant                       = "Accept"
	userAgentHeaderConstant                    = "User-Agent"
	userAgentValueConstant                     = "distkeeper"
	httpRequestLogMessageConstant              = "Build service request"
	httpResponseLogMessageConstant             = "Build service response"
	logFieldOperationConstant                  = "operation"
	logFieldMethodConstant                     = "method"
	logFieldPathConstant                       = "path"
	logFieldStatusCodeConstant                 = "status_code"
	httpSuccessStatusCodeUpperBoundaryConstant = 300
	httpSuccessStatusCodeLowerBoundaryConstant = 200
	requestPathTrailingSeparatorConstant       = "/"
)

// HTTPClientConfiguration describes how to reach the build service REST API.
type HTTPClientConfiguration struct {
	APIURL         string
	UserName       string
	Password       string
	RequestTimeout time.Duration
	HTTPClient     *http.Client
}

type httpTransport struct {
	baseURL    *url.URL
	userName   string
	password   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPClient constructs a Client that calls the REST API directly.
func NewHTTPClient(configuration HTTPClientConfiguration, logger *zap.Logger) (*Client, error) {
	trimmedAPIURL := strings.TrimSpace(configuration.APIURL)
	if len(trimmedAPIURL) == 0 {
		return nil, InvalidInputError{FieldName: apiURLFieldNameConstant, Message: requiredValueMessageConstant}
	}

	baseURL, parseError := url.Parse(strings.TrimRight(trimmedAPIURL, requestPathTrailingSeparatorConstant))
	if parseError != nil || len(baseURL.Scheme) == 0 || len(baseURL.Host) == 0 {
		return nil, InvalidInputError{FieldName: apiURLFieldNameConstant, Message: fmt.Sprintf(invalidAPIURLTemplateConstant, trimmedAPIURL)}
	}

	httpClient := configuration.HTTPClient
	if httpClient == nil {
		requestTimeout := configuration.RequestTimeout
		if requestTimeout <= 0 {
			requestTimeout = defaultRequestTimeoutConstant
		}
		httpClient = &http.Client{Timeout: requestTimeout}
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return newClient(&httpTransport{
		baseURL:    baseURL,
		userName:   configuration.UserName,
		password:   configuration.Password,
		httpClient: httpClient,
		logger:     logger,
	})
}

func (transport *httpTransport) perform(executionContext context.Context, request apiRequest) ([]byte, error) {
	requestURL := transport.baseURL.String() + request.path()

	var requestBody io.Reader
	if request.body != nil {
		requestBody = bytes.NewReader(request.body)
	}

	httpRequest, buildError := http.NewRequestWithContext(executionContext, request.method, requestURL, requestBody)
	if buildError != nil {
		return nil, OperationError{Operation: request.operation, Cause: fmt.Errorf(requestBuildErrorTemplateConstant, buildError)}
	}
	httpRequest.Header.Set(acceptHeaderConstant, xmlContentTypeConstant)
	httpRequest.Header.Set(userAgentHeaderConstant, userAgentValueConstant)
	if request.body != nil {
		httpRequest.Header.Set(contentTypeHeaderConstant, xmlContentTypeConstant)
	}
	if len(transport.userName) > 0 {
		httpRequest.SetBasicAuth(transport.userName, transport.password)
	}

	transport.logger.Debug(httpRequestLogMessageConstant,
		zap.String(logFieldOperationConstant, string(request.operation)),
		zap.String(logFieldMethodConstant, request.method),
		zap.String(logFieldPathConstant, request.path()),
	)

	httpResponse, requestError := transport.httpClient.Do(httpRequest)
	if requestError != nil {
		if contextError := executionContext.Err(); contextError != nil {
			return nil, OperationError{Operation: request.operation, Cause: contextError}
		}
		return nil, OperationError{Operation: request.operation, Cause: requestError}
	}
	defer httpResponse.Body.Close()

	payload, readError := io.ReadAll(httpResponse.Body)
	if readError != nil {
		return nil, OperationError{Operation: request.operation, Cause: fmt.Errorf(responseReadErrorTemplateConstant, readError)}
	}

	transport.logger.Debug(httpResponseLogMessageConstant,
		zap.String(logFieldOperationConstant, string(request.operation)),
		zap.String(logFieldPathConstant, request.path()),
		zap.Int(logFieldStatusCodeConstant, httpResponse.StatusCode),
	)

	if httpResponse.StatusCode < httpSuccessStatusCodeLowerBoundaryConstant || httpResponse.StatusCode >= httpSuccessStatusCodeUpperBoundaryConstant {
		return nil, APIError{
			Operation:  request.operation,
			StatusCode: httpResponse.StatusCode,
			Summary:    decodeStatusSummary(payload),
		}
	}

	return payload, nil
}
