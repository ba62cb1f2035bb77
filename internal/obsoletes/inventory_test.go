package obsoletes_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/distkeeper/internal/buildservice"
	"github.com/temirov/distkeeper/internal/obsoletes"
)

func TestInventoryUnionMerge(testInstance *testing.T) {
	leapKey := obsoletes.InventoryKey{Project: testLeapProjectConstant, Package: "zypper"}
	updateKey := obsoletes.InventoryKey{Project: testUpdateProjectConstant, Package: "zypper"}

	first := obsoletes.NewInventory().Add(leapKey, "zypper", "zypper-log")
	second := obsoletes.NewInventory().Add(leapKey, "zypper", "zypper-needs-restarting").Add(updateKey, "zypper")

	leftMerged := obsoletes.NewInventory().Merge(first).Merge(second)
	rightMerged := obsoletes.NewInventory().Merge(second).Merge(first)
	require.Equal(testInstance, leftMerged, rightMerged)
	require.Equal(testInstance, leftMerged, leftMerged.Merge(first))

	leapBinaries, found := leftMerged.Lookup(leapKey)
	require.True(testInstance, found)
	require.Equal(testInstance, []string{"zypper", "zypper-log", "zypper-needs-restarting"}, leapBinaries.Sorted())

	require.Equal(testInstance, []obsoletes.InventoryKey{updateKey, leapKey}, leftMerged.Keys())
	require.Equal(testInstance, []string{"zypper", "zypper", "zypper-log", "zypper-needs-restarting"}, leftMerged.FullBinaryList())
}

func TestInventoryBuilderFetch(testInstance *testing.T) {
	repository := newFakeRepository()
	repository.binaries[testUpdateProjectConstant+"/pool/x86_64"] = []buildservice.BinaryEntry{
		{OwnerPackage: "hdf5:gnu-openmpi-hpc", FileName: "libhdf5-103-1.10.8-1.1.x86_64.rpm"},
		{OwnerPackage: "hdf5:serial", FileName: "hdf5-devel-1.10.8-1.1.x86_64.rpm"},
		{OwnerPackage: "hdf5", FileName: "hdf5-1.10.8-1.1.src.rpm"},
		{OwnerPackage: "hdf5", FileName: "hdf5-debugsource-1.10.8-1.1.x86_64.rpm"},
		{OwnerPackage: "hdf5", FileName: "libhdf5-103-debuginfo-1.10.8-1.1.x86_64.rpm"},
		{OwnerPackage: "hdf5", FileName: "_statistics"},
		{OwnerPackage: "kernel-source", FileName: "kernel-source-5.14.21-1.1.src.rpm"},
		{OwnerPackage: "failed-build"},
	}

	observerCore, observerLogs := observer.New(zap.DebugLevel)
	builder := obsoletes.NewInventoryBuilder(repository, zap.New(observerCore))

	accumulator := obsoletes.NewInventory().Add(obsoletes.InventoryKey{Project: testUpdateProjectConstant, Package: "hdf5"}, "hdf5-tools")
	inventory, fetchError := builder.Fetch(context.Background(), accumulator, testUpdateProjectConstant, "pool", "x86_64")
	require.NoError(testInstance, fetchError)

	hdf5Binaries, found := inventory.Lookup(obsoletes.InventoryKey{Project: testUpdateProjectConstant, Package: "hdf5"})
	require.True(testInstance, found)
	require.Equal(testInstance, []string{"hdf5-devel", "hdf5-tools", "libhdf5-103"}, hdf5Binaries.Sorted())

	kernelBinaries, kernelFound := inventory.Lookup(obsoletes.InventoryKey{Project: testUpdateProjectConstant, Package: "kernel-source"})
	require.True(testInstance, kernelFound)
	require.Empty(testInstance, kernelBinaries)

	_, failedFound := inventory.Lookup(obsoletes.InventoryKey{Project: testUpdateProjectConstant, Package: "failed-build"})
	require.True(testInstance, failedFound)

	require.Equal(testInstance, 1, observerLogs.FilterMessage("Skipping file outside the package naming scheme").Len())

	missingInventory, missingError := builder.Fetch(context.Background(), obsoletes.NewInventory(), testLeapProjectConstant, "standard", "x86_64")
	require.NoError(testInstance, missingError)
	require.Empty(testInstance, missingInventory.Keys())
}

func TestInventoryBuilderSelectsRepositoryPerNamespace(testInstance *testing.T) {
	repository := newFakeRepository()
	builder := obsoletes.NewInventoryBuilder(repository, nil)

	_, buildError := builder.Build(context.Background(), obsoletes.InventoryOptions{
		Architectures:     []string{"x86_64", "aarch64"},
		Projects:          []string{testLeapProjectConstant, testUpdateProjectConstant},
		DefaultRepository: "standard",
		PoolRepository:    "pool",
	})
	require.NoError(testInstance, buildError)
	require.ElementsMatch(testInstance, []string{
		testLeapProjectConstant + "/standard/x86_64",
		testUpdateProjectConstant + "/pool/x86_64",
		testLeapProjectConstant + "/standard/aarch64",
		testUpdateProjectConstant + "/pool/aarch64",
	}, repository.binaryCalls)
}

func TestInventoryBuilderParallelFetchMatchesSequential(testInstance *testing.T) {
	repository := newFakeRepository()
	architectures := []string{"x86_64", "i586", "aarch64", "ppc64le", "s390x"}
	projects := []string{testLeapProjectConstant, testBackportsProjectConstant, testUpdateProjectConstant}
	for architectureIndex, architecture := range architectures {
		for projectIndex, project := range projects {
			repositoryName := "standard"
			if project == testUpdateProjectConstant {
				repositoryName = "pool"
			}
			repository.binaries[project+"/"+repositoryName+"/"+architecture] = rpmEntries(
				"shared",
				rpmFile("common"),
				rpmFile(fmt.Sprintf("arch-%d", architectureIndex)),
				rpmFile(fmt.Sprintf("project-%d", projectIndex)),
			)
		}
	}

	builder := obsoletes.NewInventoryBuilder(repository, nil)
	baseOptions := obsoletes.InventoryOptions{
		Architectures:     architectures,
		Projects:          projects,
		DefaultRepository: "standard",
		PoolRepository:    "pool",
	}

	sequentialInventory, sequentialError := builder.Build(context.Background(), baseOptions)
	require.NoError(testInstance, sequentialError)

	parallelOptions := baseOptions
	parallelOptions.Parallelism = 8
	parallelInventory, parallelError := builder.Build(context.Background(), parallelOptions)
	require.NoError(testInstance, parallelError)

	require.Equal(testInstance, sequentialInventory.FullBinaryList(), parallelInventory.FullBinaryList())
	sharedBinaries, found := parallelInventory.Lookup(obsoletes.InventoryKey{Project: testLeapProjectConstant, Package: "shared"})
	require.True(testInstance, found)
	require.Len(testInstance, sharedBinaries, 7)
}

func TestInventoryBuilderPropagatesFailures(testInstance *testing.T) {
	repository := newFakeRepository()
	repository.binaries[testLeapProjectConstant+"/standard/x86_64"] = rpmEntries("zypper", rpmFile("zypper"))
	repository.failures["binaries/"+testLeapProjectConstant+"/standard/s390x"] = buildservice.APIError{Operation: "ListBinaries", StatusCode: 401}

	builder := obsoletes.NewInventoryBuilder(repository, nil)
	_, buildError := builder.Build(context.Background(), obsoletes.InventoryOptions{
		Architectures:     []string{"x86_64", "s390x"},
		Projects:          []string{testLeapProjectConstant},
		DefaultRepository: "standard",
		PoolRepository:    "pool",
		Parallelism:       2,
	})

	var apiError buildservice.APIError
	require.True(testInstance, errors.As(buildError, &apiError))
	require.Equal(testInstance, 401, apiError.StatusCode)
	require.ErrorContains(testInstance, buildError, testLeapProjectConstant+"/standard/s390x")
}
