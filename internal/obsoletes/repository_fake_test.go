package obsoletes_test

import (
	"context"
	"strings"
	"sync"

	"github.com/temirov/distkeeper/internal/buildservice"
)

type fakeWrite struct {
	project     string
	packageName string
	fileName    string
	content     string
	comment     string
}

// fakeRepository serves canned build service state. Missing entries answer ErrNotFound.
type fakeRepository struct {
	mutex        sync.Mutex
	packages     map[string][]buildservice.PackageEntry
	binaries     map[string][]buildservice.BinaryEntry
	origins      map[string]buildservice.PackageOrigin
	links        map[string]buildservice.LinkInfo
	files        map[string]string
	failures     map[string]error
	writes       []fakeWrite
	binaryCalls  []string
	existsChecks []string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		packages: make(map[string][]buildservice.PackageEntry),
		binaries: make(map[string][]buildservice.BinaryEntry),
		origins:  make(map[string]buildservice.PackageOrigin),
		links:    make(map[string]buildservice.LinkInfo),
		files:    make(map[string]string),
		failures: make(map[string]error),
	}
}

func joinPath(segments ...string) string {
	return strings.Join(segments, "/")
}

func (repository *fakeRepository) ListPackages(executionContext context.Context, project string, expand bool) ([]buildservice.PackageEntry, error) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	if failure, failed := repository.failures[joinPath("packages", project)]; failed {
		return nil, failure
	}
	entries, found := repository.packages[project]
	if !found {
		return nil, buildservice.ErrNotFound
	}
	return entries, nil
}

func (repository *fakeRepository) ListBinaries(executionContext context.Context, project string, repositoryName string, architecture string) ([]buildservice.BinaryEntry, error) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	path := joinPath(project, repositoryName, architecture)
	repository.binaryCalls = append(repository.binaryCalls, path)
	if failure, failed := repository.failures[joinPath("binaries", path)]; failed {
		return nil, failure
	}
	entries, found := repository.binaries[path]
	if !found {
		return nil, buildservice.ErrNotFound
	}
	return entries, nil
}

func (repository *fakeRepository) ResolveLink(executionContext context.Context, project string, packageName string) (buildservice.LinkInfo, error) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	return repository.links[joinPath(project, packageName)], nil
}

func (repository *fakeRepository) GetPackageOrigin(executionContext context.Context, project string, packageName string) (buildservice.PackageOrigin, error) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	origin, found := repository.origins[joinPath(project, packageName)]
	if !found {
		return buildservice.PackageOrigin{}, buildservice.ErrNotFound
	}
	return origin, nil
}

func (repository *fakeRepository) PackageExists(executionContext context.Context, project string, packageName string) (bool, error) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	repository.existsChecks = append(repository.existsChecks, joinPath(project, packageName))
	_, found := repository.origins[joinPath(project, packageName)]
	return found, nil
}

func (repository *fakeRepository) ReadFile(executionContext context.Context, project string, packageName string, fileName string) (string, bool, error) {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	content, found := repository.files[joinPath(project, packageName, fileName)]
	return content, found, nil
}

func (repository *fakeRepository) WriteFile(executionContext context.Context, project string, packageName string, fileName string, content string, comment string) error {
	repository.mutex.Lock()
	defer repository.mutex.Unlock()
	if failure, failed := repository.failures[joinPath("write", project, packageName, fileName)]; failed {
		return failure
	}
	repository.files[joinPath(project, packageName, fileName)] = content
	repository.writes = append(repository.writes, fakeWrite{project: project, packageName: packageName, fileName: fileName, content: content, comment: comment})
	return nil
}

func rpmEntries(ownerPackage string, fileNames ...string) []buildservice.BinaryEntry {
	entries := make([]buildservice.BinaryEntry, 0, len(fileNames))
	for _, fileName := range fileNames {
		entries = append(entries, buildservice.BinaryEntry{OwnerPackage: ownerPackage, FileName: fileName})
	}
	if len(entries) == 0 {
		entries = append(entries, buildservice.BinaryEntry{OwnerPackage: ownerPackage})
	}
	return entries
}

func rpmFile(name string) string {
	return name + "-1.0-150400.1.1.x86_64.rpm"
}
