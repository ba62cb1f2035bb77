package obsoletes

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/distkeeper/internal/buildservice"
)

const (
	repositoryNotConfiguredMessageConstant = "obsoletes service requires a repository service"
	outputNotConfiguredMessageConstant     = "obsoletes service requires an output writer"
	targetCatalogErrorTemplateConstant     = "unable to build catalog of %s: %w"
	referenceCatalogErrorTemplateConstant  = "unable to build reference catalog of %s: %w"
	inventoryErrorTemplateConstant         = "unable to collect binaries: %w"
	selectionErrorTemplateConstant         = "unable to select current binaries: %w"
	outputErrorTemplateConstant            = "unable to print obsolete binaries: %w"
	obsoleteComputedLogMessageConstant     = "Computed obsolete binaries"
	publishSkippedLogMessageConstant       = "Print-only mode, skip list not published"
	logFieldTargetProjectConstant          = "target_project"
	logFieldReferenceProjectConstant       = "reference_project"
	logFieldObsoleteCountConstant          = "obsolete_count"
	logFieldFullCountConstant              = "full_count"
	logFieldEmptyPackagesConstant          = "empty_packages"
)

var (
	// ErrRepositoryNotConfigured indicates the service was constructed without a repository service.
	ErrRepositoryNotConfigured = errors.New(repositoryNotConfiguredMessageConstant)
	// ErrOutputNotConfigured indicates the service was constructed without an output writer.
	ErrOutputNotConfigured = errors.New(outputNotConfiguredMessageConstant)
)

// Options configures a single reconciliation run.
type Options struct {
	Project          string
	ReferenceProject string
	Architectures    []string
	Repository       string
	PoolRepository   string
	ExtraAllowlist   []string
	SkipList         SkipListLocation
	PrintOnly        bool
	Verbose          bool
	Parallelism      int
}

// OptionsFromConfiguration converts sanitized configuration into run options.
func OptionsFromConfiguration(configuration Configuration) Options {
	sanitized := configuration.Sanitize()
	return Options{
		Project:          sanitized.Project,
		ReferenceProject: sanitized.ReferenceProject,
		Architectures:    sanitized.Architectures,
		Repository:       sanitized.Repository,
		PoolRepository:   sanitized.PoolRepository,
		ExtraAllowlist:   sanitized.ExtraAllowlist,
		SkipList: SkipListLocation{
			Project: sanitized.Project,
			Package: sanitized.SkipList.Package,
			File:    sanitized.SkipList.File,
			Comment: sanitized.SkipList.Comment,
		},
		PrintOnly:   sanitized.PrintOnly,
		Verbose:     sanitized.Verbose,
		Parallelism: sanitized.Parallelism,
	}
}

// Result summarizes a reconciliation run.
type Result struct {
	Obsolete      []string
	Document      string
	EmptyPackages []string
	Published     bool
}

// Service runs the obsolete binary reconciliation against a build service.
type Service struct {
	catalogBuilder    *CatalogBuilder
	inventoryBuilder  *InventoryBuilder
	selectionResolver *SelectionResolver
	computer          ObsoleteSetComputer
	publisher         *SkipListPublisher
	output            io.Writer
	logger            *zap.Logger
}

// NewService wires the reconciliation components around repository.
func NewService(logger *zap.Logger, repository buildservice.RepositoryService, output io.Writer) (*Service, error) {
	if repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if output == nil {
		return nil, ErrOutputNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		catalogBuilder:    NewCatalogBuilder(repository, logger),
		inventoryBuilder:  NewInventoryBuilder(repository, logger),
		selectionResolver: NewSelectionResolver(repository, logger),
		computer:          NewObsoleteSetComputer(),
		publisher:         NewSkipListPublisher(repository, logger),
		output:            output,
		logger:            logger,
	}, nil
}

// Run computes the obsolete binaries of options.Project and publishes the skip list unless
// options.PrintOnly is set. Any failure before publishing aborts the run without writing.
func (service *Service) Run(executionContext context.Context, options Options) (Result, error) {
	targetCatalog, targetError := service.catalogBuilder.Build(executionContext, options.Project)
	if targetError != nil {
		return Result{}, fmt.Errorf(targetCatalogErrorTemplateConstant, options.Project, targetError)
	}

	referenceCatalog, referenceError := service.catalogBuilder.Build(executionContext, options.ReferenceProject)
	if referenceError != nil {
		return Result{}, fmt.Errorf(referenceCatalogErrorTemplateConstant, options.ReferenceProject, referenceError)
	}

	groups := targetCatalog.GroupByOwner(VendorSpecificRules())
	ownerProjects := make([]string, 0, len(groups))
	for _, group := range groups {
		ownerProjects = append(ownerProjects, group.Project)
	}

	inventory, inventoryError := service.inventoryBuilder.Build(executionContext, InventoryOptions{
		Architectures:     options.Architectures,
		Projects:          ownerProjects,
		DefaultRepository: options.Repository,
		PoolRepository:    options.PoolRepository,
		Parallelism:       options.Parallelism,
	})
	if inventoryError != nil {
		return Result{}, fmt.Errorf(inventoryErrorTemplateConstant, inventoryError)
	}
	fullBinaryList := inventory.FullBinaryList()

	selection, selectionError := service.selectionResolver.Resolve(executionContext, groups, referenceCatalog, inventory, SelectionOptions{
		ReferenceProject: options.ReferenceProject,
		Allowlist:        options.ExtraAllowlist,
	})
	if selectionError != nil {
		return Result{}, fmt.Errorf(selectionErrorTemplateConstant, selectionError)
	}

	obsolete := service.computer.Compute(fullBinaryList, selection.Selected)
	result := Result{
		Obsolete:      obsolete,
		Document:      RenderSkipList(obsolete),
		EmptyPackages: selection.EmptyPackages,
	}

	service.logger.Info(obsoleteComputedLogMessageConstant,
		zap.Int(logFieldFullCountConstant, len(fullBinaryList)),
		zap.Int(logFieldObsoleteCountConstant, len(obsolete)),
		zap.Strings(logFieldEmptyPackagesConstant, selection.EmptyPackages),
	)

	if options.PrintOnly || options.Verbose {
		for _, binaryName := range obsolete {
			if _, printError := fmt.Fprintln(service.output, binaryName); printError != nil {
				return Result{}, fmt.Errorf(outputErrorTemplateConstant, printError)
			}
		}
	}

	if options.PrintOnly {
		service.logger.Info(publishSkippedLogMessageConstant, zap.String(logFieldLocationConstant, options.SkipList.String()))
		return result, nil
	}

	published, publishError := service.publisher.Publish(executionContext, options.SkipList, result.Document)
	if publishError != nil {
		return Result{}, publishError
	}
	result.Published = published
	return result, nil
}
