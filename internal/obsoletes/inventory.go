package obsoletes

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/distkeeper/internal/buildservice"
)

const (
	flavorSeparatorConstant               = ":"
	inventoryListingErrorTemplateConstant = "unable to list binaries of %s/%s/%s: %w"
	inventoryMissingRepositoryLogConstant = "Repository has no build results"
	inventoryUnparsedBinaryLogConstant    = "Skipping file outside the package naming scheme"
	inventoryFetchedLogMessageConstant    = "Collected binaries"
	logFieldRepositoryConstant            = "repository"
	logFieldArchitectureConstant          = "architecture"
	logFieldFileNameConstant              = "file"
	logFieldBinaryCountConstant           = "binary_count"
	minimumInventoryParallelismConstant   = 1
)

// InventoryKey identifies the binaries built by one package of one project.
type InventoryKey struct {
	Project string
	Package string
}

// BinarySet is a set of binary package names.
type BinarySet map[string]struct{}

// NewBinarySet returns a set holding names.
func NewBinarySet(names ...string) BinarySet {
	set := make(BinarySet, len(names))
	set.Add(names...)
	return set
}

// Add inserts names into the set.
func (set BinarySet) Add(names ...string) {
	for _, name := range names {
		set[name] = struct{}{}
	}
}

// Union inserts every member of other into the set.
func (set BinarySet) Union(other BinarySet) {
	for name := range other {
		set[name] = struct{}{}
	}
}

// Contains reports membership.
func (set BinarySet) Contains(name string) bool {
	_, found := set[name]
	return found
}

// Sorted returns the members in ascending order.
func (set BinarySet) Sorted() []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Inventory maps packages to the binaries they build. Keys without binaries are kept;
// they record that the package reported build results.
type Inventory struct {
	binaries map[InventoryKey]BinarySet
}

// NewInventory returns an empty inventory.
func NewInventory() Inventory {
	return Inventory{binaries: make(map[InventoryKey]BinarySet)}
}

// Add records names under key, creating the key even when names is empty.
func (inventory Inventory) Add(key InventoryKey, names ...string) Inventory {
	existing, found := inventory.binaries[key]
	if !found {
		existing = make(BinarySet)
		inventory.binaries[key] = existing
	}
	existing.Add(names...)
	return inventory
}

// Merge unions every key of other into the inventory.
func (inventory Inventory) Merge(other Inventory) Inventory {
	for key, names := range other.binaries {
		inventory.Add(key)
		inventory.binaries[key].Union(names)
	}
	return inventory
}

// Lookup returns the binaries recorded under key.
func (inventory Inventory) Lookup(key InventoryKey) (BinarySet, bool) {
	names, found := inventory.binaries[key]
	return names, found
}

// Keys returns every key ordered by project, then package.
func (inventory Inventory) Keys() []InventoryKey {
	keys := make([]InventoryKey, 0, len(inventory.binaries))
	for key := range inventory.binaries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(leftIndex int, rightIndex int) bool {
		if keys[leftIndex].Project != keys[rightIndex].Project {
			return keys[leftIndex].Project < keys[rightIndex].Project
		}
		return keys[leftIndex].Package < keys[rightIndex].Package
	})
	return keys
}

// FullBinaryList concatenates the binaries of every key in key order.
// A name built by several packages appears once per package.
func (inventory Inventory) FullBinaryList() []string {
	fullList := make([]string, 0)
	for _, key := range inventory.Keys() {
		fullList = append(fullList, inventory.binaries[key].Sorted()...)
	}
	return fullList
}

// BinaryLister is the subset of buildservice.RepositoryService needed to collect binaries.
type BinaryLister interface {
	ListBinaries(executionContext context.Context, project string, repository string, architecture string) ([]buildservice.BinaryEntry, error)
}

// InventoryOptions configures which repositories are read.
type InventoryOptions struct {
	Architectures     []string
	Projects          []string
	DefaultRepository string
	PoolRepository    string
	Parallelism       int
}

// InventoryBuilder collects the shippable binaries of a set of projects.
type InventoryBuilder struct {
	lister BinaryLister
	logger *zap.Logger
}

// NewInventoryBuilder constructs an InventoryBuilder.
func NewInventoryBuilder(lister BinaryLister, logger *zap.Logger) *InventoryBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryBuilder{lister: lister, logger: logger}
}

// Build reads every architecture of every project. Fetches run concurrently up to
// options.Parallelism and merge into one inventory by set union.
func (builder *InventoryBuilder) Build(executionContext context.Context, options InventoryOptions) (Inventory, error) {
	parallelism := options.Parallelism
	if parallelism < minimumInventoryParallelismConstant {
		parallelism = minimumInventoryParallelismConstant
	}

	accumulator := NewInventory()
	var accumulatorMutex sync.Mutex

	fetchGroup, fetchContext := errgroup.WithContext(executionContext)
	fetchGroup.SetLimit(parallelism)

	for _, architecture := range options.Architectures {
		architecture := architecture
		for _, project := range options.Projects {
			project := project
			fetchGroup.Go(func() error {
				fetched, fetchError := builder.Fetch(fetchContext, NewInventory(), project, builder.repositoryFor(project, options), architecture)
				if fetchError != nil {
					return fetchError
				}
				accumulatorMutex.Lock()
				defer accumulatorMutex.Unlock()
				accumulator = accumulator.Merge(fetched)
				return nil
			})
		}
	}

	if waitError := fetchGroup.Wait(); waitError != nil {
		return Inventory{}, waitError
	}
	return accumulator, nil
}

// Fetch adds the binaries of one project repository and architecture to accumulator and returns it.
// A repository without build results adds nothing.
func (builder *InventoryBuilder) Fetch(executionContext context.Context, accumulator Inventory, project string, repository string, architecture string) (Inventory, error) {
	binaryEntries, listError := builder.lister.ListBinaries(executionContext, project, repository, architecture)
	if listError != nil {
		if errors.Is(listError, buildservice.ErrNotFound) {
			builder.logger.Debug(inventoryMissingRepositoryLogConstant,
				zap.String(logFieldProjectConstant, project),
				zap.String(logFieldRepositoryConstant, repository),
				zap.String(logFieldArchitectureConstant, architecture),
			)
			return accumulator, nil
		}
		return accumulator, fmt.Errorf(inventoryListingErrorTemplateConstant, project, repository, architecture, listError)
	}

	binaryCount := 0
	for _, binaryEntry := range binaryEntries {
		key := InventoryKey{Project: project, Package: stripFlavor(binaryEntry.OwnerPackage)}
		accumulator = accumulator.Add(key)

		if len(binaryEntry.FileName) == 0 {
			continue
		}
		binary, parsed := ParseBinaryFileName(binaryEntry.FileName)
		if !parsed {
			builder.logger.Debug(inventoryUnparsedBinaryLogConstant,
				zap.String(logFieldProjectConstant, project),
				zap.String(logFieldFileNameConstant, binaryEntry.FileName),
			)
			continue
		}
		if !binary.Shippable() {
			continue
		}
		accumulator = accumulator.Add(key, binary.Name)
		binaryCount++
	}

	builder.logger.Debug(inventoryFetchedLogMessageConstant,
		zap.String(logFieldProjectConstant, project),
		zap.String(logFieldRepositoryConstant, repository),
		zap.String(logFieldArchitectureConstant, architecture),
		zap.Int(logFieldBinaryCountConstant, binaryCount),
	)
	return accumulator, nil
}

func (builder *InventoryBuilder) repositoryFor(project string, options InventoryOptions) string {
	if strings.HasPrefix(project, vendorNamespacePrefixConstant) {
		return options.PoolRepository
	}
	return options.DefaultRepository
}

// stripFlavor removes the multibuild flavor from "package:flavor".
func stripFlavor(ownerPackage string) string {
	if separatorIndex := strings.Index(ownerPackage, flavorSeparatorConstant); separatorIndex >= 0 {
		return ownerPackage[:separatorIndex]
	}
	return ownerPackage
}
