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
	brandingMarkerConstant                = "branding"
	backportsMarkerConstant               = "Backports"
	maximumLinkDepthConstant              = 16
	missingBuildResultsLogMessageConstant = "Can not find binaries of package"
	allowlistSkippedLogMessageConstant    = "Allowlisted package is not in the reference project"
	allowlistVanishedLogMessageConstant   = "Allowlisted package disappeared while resolving its origin"
	allowlistResolvedLogMessageConstant   = "Resolved allowlisted package"
	linkCycleLogMessageConstant           = "Stopped following a cyclic package link"
	existenceCheckErrorTemplateConstant   = "unable to check %s/%s: %w"
	originLookupErrorTemplateConstant     = "unable to read origin of %s/%s: %w"
	linkResolutionErrorTemplateConstant   = "unable to resolve link of %s/%s: %w"
	logFieldPackageConstant               = "package"
	logFieldOriginProjectConstant         = "origin_project"
	logFieldOriginPackageConstant         = "origin_package"
	logFieldSelectedCountConstant         = "selected_count"
	selectionCompletedLogMessageConstant  = "Selected binaries of current sources"
)

// ReferenceResolver is the subset of buildservice.RepositoryService needed to resolve allowlisted packages.
type ReferenceResolver interface {
	PackageExists(executionContext context.Context, project string, packageName string) (bool, error)
	GetPackageOrigin(executionContext context.Context, project string, packageName string) (buildservice.PackageOrigin, error)
	ResolveLink(executionContext context.Context, project string, packageName string) (buildservice.LinkInfo, error)
}

// SelectionOptions configures the selection pass.
type SelectionOptions struct {
	ReferenceProject string
	Allowlist        []string
}

// Selection is the result of the selection pass.
type Selection struct {
	Selected      BinarySet
	EmptyPackages []string
}

// SelectionResolver determines the binaries still built from current sources.
type SelectionResolver struct {
	resolver       ReferenceResolver
	exceptionRules NameRuleTable
	logger         *zap.Logger
}

// NewSelectionResolver constructs a SelectionResolver using the standard exception rules.
func NewSelectionResolver(resolver ReferenceResolver, logger *zap.Logger) *SelectionResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionResolver{resolver: resolver, exceptionRules: ExceptionRules(), logger: logger}
}

// Resolve unions the inventory of every catalog package, of its reference counterpart, and of every
// allowlisted package into the selected set. Packages of Backports projects without build results
// are allowlisted as well.
func (selectionResolver *SelectionResolver) Resolve(executionContext context.Context, groups []ProjectPackages, referenceCatalog *Catalog, inventory Inventory, options SelectionOptions) (Selection, error) {
	selection := Selection{Selected: make(BinarySet)}
	emptyPackages := make(map[string]struct{})

	for _, group := range groups {
		for _, canonicalPackage := range group.Packages {
			candidateKeys := []InventoryKey{{Project: group.Project, Package: canonicalPackage.OwnerPackage}}
			if referenceEntry, found := selectionResolver.referenceCounterpart(group.Project, canonicalPackage.Name, referenceCatalog); found {
				candidateKeys = append(candidateKeys, InventoryKey{Project: referenceEntry.OwnerProject, Package: referenceEntry.OwnerPackage})
			}

			anyKeyFound := false
			for _, candidateKey := range candidateKeys {
				binaries, found := inventory.Lookup(candidateKey)
				if found {
					anyKeyFound = true
					selection.Selected.Union(binaries)
					continue
				}
				selectionResolver.logger.Info(missingBuildResultsLogMessageConstant,
					zap.String(logFieldProjectConstant, candidateKey.Project),
					zap.String(logFieldPackageConstant, candidateKey.Package),
				)
			}

			// Only a package without build results under every candidate key is empty.
			if anyKeyFound || !strings.Contains(group.Project, backportsMarkerConstant) {
				continue
			}
			if _, recorded := emptyPackages[canonicalPackage.Name]; !recorded {
				emptyPackages[canonicalPackage.Name] = struct{}{}
				selection.EmptyPackages = append(selection.EmptyPackages, canonicalPackage.Name)
			}
		}
	}

	allowlist := mergeAllowlist(options.Allowlist, selection.EmptyPackages)
	for _, packageName := range allowlist {
		if selectionResolver.exceptionRules.Matches(packageName) {
			continue
		}

		resolvedKey, resolved, resolutionError := selectionResolver.resolveAllowlisted(executionContext, options.ReferenceProject, packageName)
		if resolutionError != nil {
			return Selection{}, resolutionError
		}
		if !resolved {
			continue
		}
		if binaries, found := inventory.Lookup(resolvedKey); found {
			selection.Selected.Union(binaries)
		}
	}

	selectionResolver.logger.Debug(selectionCompletedLogMessageConstant, zap.Int(logFieldSelectedCountConstant, len(selection.Selected)))
	return selection, nil
}

func (selectionResolver *SelectionResolver) referenceCounterpart(project string, packageName string, referenceCatalog *Catalog) (CanonicalPackage, bool) {
	if referenceCatalog == nil || !strings.HasPrefix(project, communityNamespacePrefixConstant) {
		return CanonicalPackage{}, false
	}
	if strings.Contains(packageName, brandingMarkerConstant) {
		return CanonicalPackage{}, false
	}
	return referenceCatalog.Lookup(packageName)
}

// resolveAllowlisted maps a reference package to the inventory key of the package that actually builds it.
func (selectionResolver *SelectionResolver) resolveAllowlisted(executionContext context.Context, referenceProject string, packageName string) (InventoryKey, bool, error) {
	exists, existenceError := selectionResolver.resolver.PackageExists(executionContext, referenceProject, packageName)
	if existenceError != nil {
		return InventoryKey{}, false, fmt.Errorf(existenceCheckErrorTemplateConstant, referenceProject, packageName, existenceError)
	}
	if !exists {
		selectionResolver.logger.Debug(allowlistSkippedLogMessageConstant,
			zap.String(logFieldProjectConstant, referenceProject),
			zap.String(logFieldPackageConstant, packageName),
		)
		return InventoryKey{}, false, nil
	}

	origin, originError := selectionResolver.resolver.GetPackageOrigin(executionContext, referenceProject, packageName)
	if originError != nil {
		if errors.Is(originError, buildservice.ErrNotFound) {
			selectionResolver.logger.Warn(allowlistVanishedLogMessageConstant,
				zap.String(logFieldProjectConstant, referenceProject),
				zap.String(logFieldPackageConstant, packageName),
			)
			return InventoryKey{}, false, nil
		}
		return InventoryKey{}, false, fmt.Errorf(originLookupErrorTemplateConstant, referenceProject, packageName, originError)
	}

	resolvedKey, linkError := selectionResolver.followLinks(executionContext, InventoryKey{Project: origin.OriginProject, Package: origin.OriginPackage})
	if linkError != nil {
		return InventoryKey{}, false, linkError
	}

	selectionResolver.logger.Debug(allowlistResolvedLogMessageConstant,
		zap.String(logFieldPackageConstant, packageName),
		zap.String(logFieldOriginProjectConstant, resolvedKey.Project),
		zap.String(logFieldOriginPackageConstant, resolvedKey.Package),
	)
	return resolvedKey, true, nil
}

// followLinks walks package links until it reaches a package that does not link.
func (selectionResolver *SelectionResolver) followLinks(executionContext context.Context, start InventoryKey) (InventoryKey, error) {
	current := start
	visited := map[InventoryKey]struct{}{current: {}}

	for depth := 0; depth < maximumLinkDepthConstant; depth++ {
		linkInfo, linkError := selectionResolver.resolver.ResolveLink(executionContext, current.Project, current.Package)
		if linkError != nil {
			if errors.Is(linkError, buildservice.ErrNotFound) {
				return current, nil
			}
			return InventoryKey{}, fmt.Errorf(linkResolutionErrorTemplateConstant, current.Project, current.Package, linkError)
		}
		if !linkInfo.Present || len(linkInfo.LinkedPackage) == 0 {
			return current, nil
		}

		next := InventoryKey{Project: current.Project, Package: linkInfo.LinkedPackage}
		if len(linkInfo.LinkedProject) > 0 {
			next.Project = linkInfo.LinkedProject
		}
		if _, seen := visited[next]; seen {
			selectionResolver.logger.Warn(linkCycleLogMessageConstant,
				zap.String(logFieldProjectConstant, next.Project),
				zap.String(logFieldPackageConstant, next.Package),
			)
			return current, nil
		}
		visited[next] = struct{}{}
		current = next
	}

	return current, nil
}

// mergeAllowlist appends the empty packages to the configured allowlist, dropping blanks and repeats.
func mergeAllowlist(configured []string, emptyPackages []string) []string {
	merged := make([]string, 0, len(configured)+len(emptyPackages))
	seen := make(map[string]struct{})
	for _, packageName := range append(append([]string{}, configured...), emptyPackages...) {
		trimmedName := strings.TrimSpace(packageName)
		if len(trimmedName) == 0 {
			continue
		}
		if _, duplicate := seen[trimmedName]; duplicate {
			continue
		}
		seen[trimmedName] = struct{}{}
		merged = append(merged, trimmedName)
	}
	return merged
}
