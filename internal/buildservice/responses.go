package buildservice

import (
	"encoding/xml"
	"strings"
)

const statusSummaryLengthLimitConstant = 200

type directoryResponse struct {
	XMLName  xml.Name                `xml:"directory"`
	Entries  []directoryEntryElement `xml:"entry"`
	LinkInfo *linkInfoElement        `xml:"linkinfo"`
}

type directoryEntryElement struct {
	Name          string `xml:"name,attr"`
	OriginProject string `xml:"originproject,attr"`
}

type linkInfoElement struct {
	Project string `xml:"project,attr"`
	Package string `xml:"package,attr"`
}

type binaryVersionsListResponse struct {
	XMLName  xml.Name                `xml:"binaryversionslist"`
	Packages []binaryVersionsElement `xml:"binaryversions"`
}

type binaryVersionsElement struct {
	Package  string                 `xml:"package,attr"`
	Binaries []binaryVersionElement `xml:"binary"`
}

type binaryVersionElement struct {
	Name string `xml:"name,attr"`
}

type packageMetaResponse struct {
	XMLName xml.Name `xml:"package"`
	Name    string   `xml:"name,attr"`
	Project string   `xml:"project,attr"`
}

type statusResponse struct {
	XMLName xml.Name `xml:"status"`
	Code    string   `xml:"code,attr"`
	Summary string   `xml:"summary"`
}

func decodeResponse(operation OperationName, payload []byte, target any) error {
	if decodingError := xml.Unmarshal(payload, target); decodingError != nil {
		return ResponseDecodingError{Operation: operation, Cause: decodingError}
	}
	return nil
}

func decodePackageEntries(payload []byte) ([]PackageEntry, error) {
	var response directoryResponse
	if decodingError := decodeResponse(listPackagesOperationNameConstant, payload, &response); decodingError != nil {
		return nil, decodingError
	}

	packageEntries := make([]PackageEntry, 0, len(response.Entries))
	for _, entry := range response.Entries {
		packageEntries = append(packageEntries, PackageEntry{Name: entry.Name, OriginProject: entry.OriginProject})
	}
	return packageEntries, nil
}

func decodeBinaryEntries(payload []byte) ([]BinaryEntry, error) {
	var response binaryVersionsListResponse
	if decodingError := decodeResponse(listBinariesOperationNameConstant, payload, &response); decodingError != nil {
		return nil, decodingError
	}

	binaryEntries := make([]BinaryEntry, 0)
	for _, packageElement := range response.Packages {
		if len(packageElement.Binaries) == 0 {
			binaryEntries = append(binaryEntries, BinaryEntry{OwnerPackage: packageElement.Package})
			continue
		}
		for _, binaryElement := range packageElement.Binaries {
			binaryEntries = append(binaryEntries, BinaryEntry{OwnerPackage: packageElement.Package, FileName: binaryElement.Name})
		}
	}
	return binaryEntries, nil
}

func decodeLinkInfo(payload []byte) (LinkInfo, error) {
	var response directoryResponse
	if decodingError := decodeResponse(resolveLinkOperationNameConstant, payload, &response); decodingError != nil {
		return LinkInfo{}, decodingError
	}
	if response.LinkInfo == nil {
		return LinkInfo{}, nil
	}
	return LinkInfo{
		LinkedProject: response.LinkInfo.Project,
		LinkedPackage: response.LinkInfo.Package,
		Present:       true,
	}, nil
}

func decodePackageOrigin(payload []byte) (PackageOrigin, error) {
	var response packageMetaResponse
	if decodingError := decodeResponse(getPackageOriginOperationNameConstant, payload, &response); decodingError != nil {
		return PackageOrigin{}, decodingError
	}
	return PackageOrigin{OriginProject: response.Project, OriginPackage: response.Name}, nil
}

// decodeStatusSummary extracts the human-readable summary of an error status document.
func decodeStatusSummary(payload []byte) string {
	var response statusResponse
	if xml.Unmarshal(payload, &response) != nil {
		rawSummary := strings.TrimSpace(string(payload))
		if len(rawSummary) > statusSummaryLengthLimitConstant {
			rawSummary = rawSummary[:statusSummaryLengthLimitConstant]
		}
		return rawSummary
	}
	if summary := strings.TrimSpace(response.Summary); len(summary) > 0 {
		return summary
	}
	return strings.TrimSpace(response.Code)
}
