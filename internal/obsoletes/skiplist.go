package obsoletes

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	skipListGroupNameConstant             = "NON_FTP_PACKAGES"
	skipListConditionalNameConstant       = "drop_from_ftp"
	skipListRelationshipConstant          = "requires"
	skipListIndentConstant                = "  "
	skipListReadErrorTemplateConstant     = "unable to read stored skip list %s: %w"
	skipListWriteErrorTemplateConstant    = "unable to publish skip list %s: %w"
	skipListUnchangedLogMessageConstant   = "Skip list is up to date"
	skipListPublishedLogMessageConstant   = "Published skip list"
	skipListUnparsedLogMessageConstant    = "Stored skip list could not be parsed"
	logFieldLocationConstant              = "location"
	logFieldAddedCountConstant            = "added"
	logFieldRemovedCountConstant          = "removed"
	skipListLocationPathSeparatorConstant = "/"
)

// SkipListLocation names the stored skip list document and the commit comment used to update it.
type SkipListLocation struct {
	Project string
	Package string
	File    string
	Comment string
}

// String renders the location as project/package/file.
func (location SkipListLocation) String() string {
	return strings.Join([]string{location.Project, location.Package, location.File}, skipListLocationPathSeparatorConstant)
}

// RenderSkipList renders the obsolete binaries in the canonical skip list form:
// two-space indentation, self-closing empty elements, and a trailing newline.
func RenderSkipList(obsolete []string) string {
	var document strings.Builder
	fmt.Fprintf(&document, "<group name=\"%s\">\n", escapeAttribute(skipListGroupNameConstant))
	fmt.Fprintf(&document, "%s<conditional name=\"%s\"/>\n", skipListIndentConstant, escapeAttribute(skipListConditionalNameConstant))
	if len(obsolete) == 0 {
		fmt.Fprintf(&document, "%s<packagelist relationship=\"%s\"/>\n", skipListIndentConstant, escapeAttribute(skipListRelationshipConstant))
	} else {
		fmt.Fprintf(&document, "%s<packagelist relationship=\"%s\">\n", skipListIndentConstant, escapeAttribute(skipListRelationshipConstant))
		for _, binaryName := range obsolete {
			fmt.Fprintf(&document, "%s%s<package name=\"%s\"/>\n", skipListIndentConstant, skipListIndentConstant, escapeAttribute(binaryName))
		}
		fmt.Fprintf(&document, "%s</packagelist>\n", skipListIndentConstant)
	}
	document.WriteString("</group>\n")
	return document.String()
}

// attributeEscaper escapes attribute values with named entities for quotes and markup
// and character references for whitespace that attribute normalization would fold.
var attributeEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"\n", "&#10;",
	"\r", "&#13;",
	"\t", "&#9;",
)

func escapeAttribute(value string) string {
	return attributeEscaper.Replace(value)
}

type skipListDocument struct {
	XMLName     xml.Name            `xml:"group"`
	Name        string              `xml:"name,attr"`
	PackageList skipListPackageList `xml:"packagelist"`
}

type skipListPackageList struct {
	Relationship string            `xml:"relationship,attr"`
	Packages     []skipListPackage `xml:"package"`
}

type skipListPackage struct {
	Name string `xml:"name,attr"`
}

// ParseSkipList returns the package names listed in a skip list document.
func ParseSkipList(document string) ([]string, error) {
	var parsed skipListDocument
	if decodingError := xml.Unmarshal([]byte(document), &parsed); decodingError != nil {
		return nil, decodingError
	}
	names := make([]string, 0, len(parsed.PackageList.Packages))
	for _, listedPackage := range parsed.PackageList.Packages {
		names = append(names, listedPackage.Name)
	}
	return names, nil
}

// SkipListStore is the subset of buildservice.RepositoryService needed to publish the skip list.
type SkipListStore interface {
	ReadFile(executionContext context.Context, project string, packageName string, fileName string) (string, bool, error)
	WriteFile(executionContext context.Context, project string, packageName string, fileName string, content string, comment string) error
}

// SkipListPublisher stores the skip list only when its content changes.
type SkipListPublisher struct {
	store  SkipListStore
	logger *zap.Logger
}

// NewSkipListPublisher constructs a SkipListPublisher.
func NewSkipListPublisher(store SkipListStore, logger *zap.Logger) *SkipListPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SkipListPublisher{store: store, logger: logger}
}

// Publish writes document to location unless the stored document is identical.
// It reports whether a write happened. A missing stored document counts as empty.
func (publisher *SkipListPublisher) Publish(executionContext context.Context, location SkipListLocation, document string) (bool, error) {
	storedDocument, _, readError := publisher.store.ReadFile(executionContext, location.Project, location.Package, location.File)
	if readError != nil {
		return false, fmt.Errorf(skipListReadErrorTemplateConstant, location, readError)
	}

	if storedDocument == document {
		publisher.logger.Info(skipListUnchangedLogMessageConstant, zap.String(logFieldLocationConstant, location.String()))
		return false, nil
	}

	if writeError := publisher.store.WriteFile(executionContext, location.Project, location.Package, location.File, document, location.Comment); writeError != nil {
		return false, fmt.Errorf(skipListWriteErrorTemplateConstant, location, writeError)
	}

	publishedFields := []zap.Field{zap.String(logFieldLocationConstant, location.String())}
	publishedFields = append(publishedFields, publisher.describeChange(storedDocument, document)...)
	publisher.logger.Info(skipListPublishedLogMessageConstant, publishedFields...)
	return true, nil
}

func (publisher *SkipListPublisher) describeChange(storedDocument string, document string) []zap.Field {
	storedNames := make([]string, 0)
	if len(strings.TrimSpace(storedDocument)) > 0 {
		parsedNames, parseError := ParseSkipList(storedDocument)
		if parseError != nil {
			publisher.logger.Debug(skipListUnparsedLogMessageConstant, zap.Error(parseError))
			return nil
		}
		storedNames = parsedNames
	}
	currentNames, parseError := ParseSkipList(document)
	if parseError != nil {
		return nil
	}

	storedSet := NewBinarySet(storedNames...)
	currentSet := NewBinarySet(currentNames...)
	addedCount := 0
	for name := range currentSet {
		if !storedSet.Contains(name) {
			addedCount++
		}
	}
	removedCount := 0
	for name := range storedSet {
		if !currentSet.Contains(name) {
			removedCount++
		}
	}
	return []zap.Field{zap.Int(logFieldAddedCountConstant, addedCount), zap.Int(logFieldRemovedCountConstant, removedCount)}
}
