package obsoletes

import "strings"

const (
	defaultProjectConstant              = "openSUSE:Leap:15.4"
	defaultReferenceProjectConstant     = "SUSE:SLE-15-SP4:GA"
	defaultRepositoryConstant           = "standard"
	defaultPoolRepositoryConstant       = "pool"
	defaultSkipListPackageConstant      = "000package-groups"
	defaultSkipListFileConstant         = "NON_FTP_PACKAGES.group"
	defaultSkipListCommentConstant      = "Update the skip list"
	defaultInventoryParallelismConstant = 1
)

// defaultArchitectures lists the architectures the distribution ships.
var defaultArchitectures = []string{"x86_64", "i586", "aarch64", "ppc64le", "s390x"}

// defaultExtraAllowlist names multi-flavor stacks whose flavors differ between the community and vendor builds.
var defaultExtraAllowlist = []string{
	"python-numpy", "openblas", "openmpi", "openmpi2", "openmpi3", "mpich", "mvapich2", "scalapack",
	"libappindicator", "timescaledb", "pgaudit", "petsc", "lua-lmod", "adios", "gnu-compilers-hpc", "hdf5",
	"hypre", "imb", "mumps", "netcdf-cxx4", "netcdf-fortran", "netcdf", "ocr", "scotch", "superlu", "trilinos",
}

// Configuration stores the settings of the obsoletes command.
// ExtraAllowlist cannot be emptied: a list without non-blank names is replaced by the built-in stacks.
type Configuration struct {
	Project          string                `mapstructure:"project"`
	ReferenceProject string                `mapstructure:"reference_project"`
	Architectures    []string              `mapstructure:"architectures"`
	Repository       string                `mapstructure:"repository"`
	PoolRepository   string                `mapstructure:"pool_repository"`
	ExtraAllowlist   []string              `mapstructure:"extra_allowlist"`
	SkipList         SkipListConfiguration `mapstructure:"skip_list"`
	PrintOnly        bool                  `mapstructure:"print_only"`
	Verbose          bool                  `mapstructure:"verbose"`
	Parallelism      int                   `mapstructure:"parallelism"`
}

// SkipListConfiguration names the package and file holding the skip list inside the target project.
type SkipListConfiguration struct {
	Package string `mapstructure:"package"`
	File    string `mapstructure:"file"`
	Comment string `mapstructure:"comment"`
}

// DefaultConfiguration supplies baseline values for the obsoletes command.
func DefaultConfiguration() Configuration {
	return Configuration{
		Project:          defaultProjectConstant,
		ReferenceProject: defaultReferenceProjectConstant,
		Architectures:    append([]string{}, defaultArchitectures...),
		Repository:       defaultRepositoryConstant,
		PoolRepository:   defaultPoolRepositoryConstant,
		ExtraAllowlist:   append([]string{}, defaultExtraAllowlist...),
		SkipList: SkipListConfiguration{
			Package: defaultSkipListPackageConstant,
			File:    defaultSkipListFileConstant,
			Comment: defaultSkipListCommentConstant,
		},
		Parallelism: defaultInventoryParallelismConstant,
	}
}

// Sanitize trims values and falls back to defaults for blank settings.
// An empty or all-blank extra allowlist becomes the default allowlist.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := configuration

	sanitized.Project = fallbackString(sanitized.Project, defaults.Project)
	sanitized.ReferenceProject = fallbackString(sanitized.ReferenceProject, defaults.ReferenceProject)
	sanitized.Repository = fallbackString(sanitized.Repository, defaults.Repository)
	sanitized.PoolRepository = fallbackString(sanitized.PoolRepository, defaults.PoolRepository)
	sanitized.SkipList.Package = fallbackString(sanitized.SkipList.Package, defaults.SkipList.Package)
	sanitized.SkipList.File = fallbackString(sanitized.SkipList.File, defaults.SkipList.File)
	sanitized.SkipList.Comment = fallbackString(sanitized.SkipList.Comment, defaults.SkipList.Comment)

	sanitized.Architectures = sanitizeNames(sanitized.Architectures)
	if len(sanitized.Architectures) == 0 {
		sanitized.Architectures = defaults.Architectures
	}
	sanitized.ExtraAllowlist = sanitizeNames(sanitized.ExtraAllowlist)
	if len(sanitized.ExtraAllowlist) == 0 {
		sanitized.ExtraAllowlist = defaults.ExtraAllowlist
	}
	if sanitized.Parallelism < defaults.Parallelism {
		sanitized.Parallelism = defaults.Parallelism
	}

	return sanitized
}

func fallbackString(value string, fallback string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallback
	}
	return trimmedValue
}

func sanitizeNames(names []string) []string {
	sanitized := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		trimmedName := strings.TrimSpace(name)
		if len(trimmedName) == 0 {
			continue
		}
		if _, duplicate := seen[trimmedName]; duplicate {
			continue
		}
		seen[trimmedName] = struct{}{}
		sanitized = append(sanitized, trimmedName)
	}
	return sanitized
}
