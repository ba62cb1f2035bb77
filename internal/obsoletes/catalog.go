package obsoletes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/distkeeper/internal/buildservice"
)

const (
	vendorNamespacePrefixConstant       = "SUSE:"
	communityNamespacePrefixConstant    = "openSUSE:"
	updateProjectSuffixConstant         = ":Update"
	incidentSeparatorConstant           = "."
	catalogListingErrorTemplateConstant = "unable to list packages of %s: %w"
	catalogEmptyLogMessageConstant      = "Project has no package listing"
	catalogBuiltLogMessageConstant      = "Built package catalog"
	logFieldProjectConstant             = "project"
	logFieldPackageCountConstant        = "package_count"
)

// incidentGuardedPrefixes name packages whose regular names already end in ".<digits>".
// They count as incidents only when the name carries more than one dot.
var incidentGuardedPrefixes = []string{"go1", "bazel0", "dotnet", "ruby2"}

// CanonicalPackage is the revision of a package that currently represents it.
type CanonicalPackage struct {
	Name         string
	OwnerProject string
	OwnerPackage string
}

// ProjectPackages lists the canonical packages owned by one project.
type ProjectPackages struct {
	Project  string
	Packages []CanonicalPackage
}

// Catalog maps canonical package names to their current revision.
// Iteration follows the order in which names were first recorded.
type Catalog struct {
	entries map[string]CanonicalPackage
	order   []string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]CanonicalPackage)}
}

// Lookup returns the canonical entry recorded for name.
func (catalog *Catalog) Lookup(name string) (CanonicalPackage, bool) {
	entry, found := catalog.entries[name]
	return entry, found
}

// Len reports the number of canonical names.
func (catalog *Catalog) Len() int {
	return len(catalog.entries)
}

// Packages returns the canonical entries in recording order.
func (catalog *Catalog) Packages() []CanonicalPackage {
	packages := make([]CanonicalPackage, 0, len(catalog.order))
	for _, name := range catalog.order {
		packages = append(packages, catalog.entries[name])
	}
	return packages
}

func (catalog *Catalog) record(entry CanonicalPackage) {
	if _, exists := catalog.entries[entry.Name]; !exists {
		catalog.order = append(catalog.order, entry.Name)
	}
	catalog.entries[entry.Name] = entry
}

// GroupByOwner groups the catalog by owner project, dropping vendor-specific packages owned by vendor projects.
// Projects appear in the order of their first package; package identifiers are unique within a project.
func (catalog *Catalog) GroupByOwner(vendorSpecificRules NameRuleTable) []ProjectPackages {
	groups := make([]ProjectPackages, 0)
	groupIndexes := make(map[string]int)
	seenPackages := make(map[string]map[string]struct{})

	for _, entry := range catalog.Packages() {
		if strings.HasPrefix(entry.OwnerProject, vendorNamespacePrefixConstant) && vendorSpecificRules.Matches(entry.Name) {
			continue
		}

		groupIndex, groupExists := groupIndexes[entry.OwnerProject]
		if !groupExists {
			groupIndex = len(groups)
			groupIndexes[entry.OwnerProject] = groupIndex
			groups = append(groups, ProjectPackages{Project: entry.OwnerProject})
			seenPackages[entry.OwnerProject] = make(map[string]struct{})
		}

		if _, seen := seenPackages[entry.OwnerProject][entry.OwnerPackage]; seen {
			continue
		}
		seenPackages[entry.OwnerProject][entry.OwnerPackage] = struct{}{}
		groups[groupIndex].Packages = append(groups[groupIndex].Packages, entry)
	}

	return groups
}

// PackageLister is the subset of buildservice.RepositoryService needed to build catalogs.
type PackageLister interface {
	ListPackages(executionContext context.Context, project string, expand bool) ([]buildservice.PackageEntry, error)
}

// CatalogBuilder canonicalizes project package listings.
type CatalogBuilder struct {
	lister         PackageLister
	exclusionRules NameRuleTable
	logger         *zap.Logger
}

// NewCatalogBuilder constructs a CatalogBuilder using the standard exclusion rules.
func NewCatalogBuilder(lister PackageLister, logger *zap.Logger) *CatalogBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogBuilder{lister: lister, exclusionRules: CatalogExclusionRules(), logger: logger}
}

// Build lists the expanded packages of project and canonicalizes them.
// A project that does not exist yields an empty catalog.
func (builder *CatalogBuilder) Build(executionContext context.Context, project string) (*Catalog, error) {
	packageEntries, listError := builder.lister.ListPackages(executionContext, project, true)
	if listError != nil {
		if errors.Is(listError, buildservice.ErrNotFound) {
			builder.logger.Info(catalogEmptyLogMessageConstant, zap.String(logFieldProjectConstant, project))
			return NewCatalog(), nil
		}
		return nil, fmt.Errorf(catalogListingErrorTemplateConstant, project, listError)
	}

	catalog := builder.Canonicalize(packageEntries)
	builder.logger.Debug(catalogBuiltLogMessageConstant,
		zap.String(logFieldProjectConstant, project),
		zap.Int(logFieldPackageCountConstant, catalog.Len()),
	)
	return catalog, nil
}

// Canonicalize applies the exclusion rules and collapses incident revisions onto their base names.
func (builder *CatalogBuilder) Canonicalize(packageEntries []buildservice.PackageEntry) *Catalog {
	catalog := NewCatalog()

	for _, packageEntry := range packageEntries {
		packageName := packageEntry.Name
		if builder.exclusionRules.Matches(packageName) {
			continue
		}

		baseName, incidentNumber, isIncident := splitIncident(packageName, packageEntry.OriginProject)
		if !isIncident {
			catalog.record(CanonicalPackage{Name: packageName, OwnerProject: packageEntry.OriginProject, OwnerPackage: packageName})
			continue
		}

		incidentEntry := CanonicalPackage{Name: baseName, OwnerProject: packageEntry.OriginProject, OwnerPackage: packageName}
		existingEntry, exists := catalog.Lookup(baseName)
		if !exists || existingEntry.OwnerProject != packageEntry.OriginProject {
			catalog.record(incidentEntry)
			continue
		}

		_, existingNumber, existingIsIncident := splitIncidentSuffix(existingEntry.OwnerPackage)
		if !existingIsIncident || compareIncidentNumbers(incidentNumber, existingNumber) > 0 {
			catalog.record(incidentEntry)
		}
	}

	return catalog
}

// splitIncident reports whether packageName is a maintenance incident revision of a base package.
func splitIncident(packageName string, originProject string) (string, string, bool) {
	if !strings.HasPrefix(originProject, vendorNamespacePrefixConstant) || !strings.HasSuffix(originProject, updateProjectSuffixConstant) {
		return "", "", false
	}

	baseName, incidentNumber, hasSuffix := splitIncidentSuffix(packageName)
	if !hasSuffix {
		return "", "", false
	}

	for _, guardedPrefix := range incidentGuardedPrefixes {
		if strings.HasPrefix(packageName, guardedPrefix) && strings.Count(packageName, incidentSeparatorConstant) <= 1 {
			return "", "", false
		}
	}

	return baseName, incidentNumber, true
}

// splitIncidentSuffix splits "<base>.<digits>" into base and digits.
func splitIncidentSuffix(packageName string) (string, string, bool) {
	separatorIndex := strings.LastIndex(packageName, incidentSeparatorConstant)
	if separatorIndex < 0 {
		return "", "", false
	}

	suffix := packageName[separatorIndex+1:]
	if len(suffix) == 0 {
		return "", "", false
	}
	for _, character := range suffix {
		if character < '0' || character > '9' {
			return "", "", false
		}
	}

	return packageName[:separatorIndex], suffix, true
}

// compareIncidentNumbers compares decimal digit strings of arbitrary length.
func compareIncidentNumbers(left string, right string) int {
	trimmedLeft := strings.TrimLeft(left, "0")
	trimmedRight := strings.TrimLeft(right, "0")
	if len(trimmedLeft) != len(trimmedRight) {
		if len(trimmedLeft) > len(trimmedRight) {
			return 1
		}
		return -1
	}
	return strings.Compare(trimmedLeft, trimmedRight)
}
