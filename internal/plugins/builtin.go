package plugins

import (
	"time"

	"go.trai.ch/polybuild/internal/adapters/fs"
	"go.trai.ch/polybuild/internal/core/domain"
	"go.trai.ch/polybuild/internal/core/ports"
	"go.trai.ch/polybuild/internal/engine/registry"
)

const builtinVersion = "2.0.0"

// GoRecipe builds Go modules with the go command.
func GoRecipe() Recipe {
	return Recipe{
		Metadata: domain.PluginMetadata{
			Name:                "go",
			Version:             builtinVersion,
			Description:         "Go modules via the go command",
			SupportedExtensions: []string{".go"},
			Capabilities: []domain.Capability{
				domain.CapIncrementalBuild,
				domain.CapParallelBuild,
				domain.CapDependencyResolution,
				domain.CapCacheOptimization,
				domain.CapTesting,
				domain.CapLinting,
			},
		},
		Patterns: []domain.FilePattern{
			{Extension: ".go", Priority: 10, RequiredFiles: []string{"go.mod"}},
			{Extension: ".go", Priority: 5},
		},
		Manifests: []string{"go.mod", "go.sum"},
		Tools:     []string{"go"},
		Build:     Step{Commands: []string{"go build ${packages}"}, Defaults: map[string]string{"packages": "./..."}},
		Clean:     Step{Commands: []string{"go clean ${packages}"}, Defaults: map[string]string{"packages": "./..."}},
		Test:      &Step{Commands: []string{"go test ${packages}"}, Defaults: map[string]string{"packages": "./..."}},
		Lint:      &Step{Commands: []string{"go vet ${packages}"}, Defaults: map[string]string{"packages": "./..."}},
		PerFile:   100 * time.Millisecond,
	}
}

// PythonRecipe byte-compiles Python sources and drives pytest and ruff.
func PythonRecipe() Recipe {
	return Recipe{
		Metadata: domain.PluginMetadata{
			Name:                "python",
			Version:             builtinVersion,
			Description:         "Python packages via compileall, pytest and build",
			SupportedExtensions: []string{".py", ".pyx", ".pyi"},
			Capabilities: []domain.Capability{
				domain.CapIncrementalBuild,
				domain.CapParallelBuild,
				domain.CapDependencyResolution,
				domain.CapCacheOptimization,
				domain.CapTesting,
				domain.CapLinting,
				domain.CapPackaging,
			},
		},
		Patterns: []domain.FilePattern{
			{Extension: ".py", Priority: 10, RequiredFiles: []string{"requirements.txt"}},
			{Extension: ".py", Priority: 8, RequiredFiles: []string{"pyproject.toml"}},
			{Extension: ".py", Priority: 5},
			{Extension: ".pyx", Priority: 7},
			{Extension: ".pyi", Priority: 3},
		},
		Manifests: []string{"requirements.txt", "pyproject.toml", "setup.py", "setup.cfg"},
		Tools:     []string{"python3", "pip"},
		Build:     Step{Commands: []string{"python3 -m compileall -q ."}},
		Clean:     Step{Commands: []string{"find . -name __pycache__ -type d -prune -exec rm -rf {} +"}},
		Test:      &Step{Commands: []string{"python3 -m pytest ${args}"}},
		Lint:      &Step{Commands: []string{"python3 -m ruff check ."}},
		Package:   &Step{Commands: []string{"python3 -m build"}},
		Artifacts: []string{"dist"},
		PerFile:   50 * time.Millisecond,
	}
}

// TypeScriptRecipe runs npm scripts.
func TypeScriptRecipe() Recipe {
	return Recipe{
		Metadata: domain.PluginMetadata{
			Name:                "typescript",
			Version:             builtinVersion,
			Description:         "TypeScript and JavaScript projects via npm scripts",
			SupportedExtensions: []string{".ts", ".tsx", ".js", ".jsx"},
			Capabilities: []domain.Capability{
				domain.CapIncrementalBuild,
				domain.CapParallelBuild,
				domain.CapDependencyResolution,
				domain.CapCacheOptimization,
				domain.CapHotReload,
				domain.CapTesting,
				domain.CapLinting,
				domain.CapPackaging,
			},
		},
		Patterns: []domain.FilePattern{
			{Extension: ".ts", Priority: 10, RequiredFiles: []string{"package.json", "tsconfig.json"}},
			{Extension: ".tsx", Priority: 10, RequiredFiles: []string{"package.json", "tsconfig.json"}},
			{Extension: ".js", Priority: 8, RequiredFiles: []string{"package.json"}},
			{Extension: ".jsx", Priority: 8, RequiredFiles: []string{"package.json"}},
			{Extension: ".ts", Priority: 5},
			{Extension: ".js", Priority: 3},
		},
		Manifests:    []string{"package.json", "package-lock.json", "tsconfig.json"},
		Tools:        []string{"node", "npm"},
		Build:        Step{Commands: []string{"npm run ${script}"}, Defaults: map[string]string{"script": "build"}},
		Clean:        Step{Commands: []string{"rm -rf dist"}},
		Test:         &Step{Commands: []string{"npm test"}},
		Lint:         &Step{Commands: []string{"npm run lint"}},
		Package:      &Step{Commands: []string{"npm pack"}},
		Artifacts:    []string{"dist"},
		ArtifactKind: "bundle",
		PerFile:      50 * time.Millisecond,
	}
}

// KotlinRecipe runs Gradle tasks through the wrapper.
func KotlinRecipe() Recipe {
	return Recipe{
		Metadata: domain.PluginMetadata{
			Name:                "kotlin",
			Version:             builtinVersion,
			Description:         "Kotlin projects via the Gradle wrapper",
			SupportedExtensions: []string{".kt", ".kts"},
			Capabilities: []domain.Capability{
				domain.CapIncrementalBuild,
				domain.CapParallelBuild,
				domain.CapDependencyResolution,
				domain.CapCacheOptimization,
				domain.CapTesting,
				domain.CapPackaging,
			},
		},
		Patterns: []domain.FilePattern{
			{Extension: ".kt", Priority: 10, RequiredFiles: []string{"build.gradle.kts", "gradlew"}},
			{Extension: ".kt", Priority: 8, RequiredFiles: []string{"build.gradle"}},
			{Extension: ".kt", Priority: 5},
			{Extension: ".kts", Priority: 7},
		},
		Manifests: []string{
			"build.gradle.kts", "build.gradle", "settings.gradle.kts", "settings.gradle", "gradle.properties",
		},
		Tools:        []string{"java"},
		Build:        Step{Commands: []string{"./gradlew ${task}"}, Defaults: map[string]string{"task": "build"}},
		Clean:        Step{Commands: []string{"./gradlew clean"}},
		Test:         &Step{Commands: []string{"./gradlew test"}},
		Package:      &Step{Commands: []string{"./gradlew assemble"}},
		Artifacts:    []string{"build/libs"},
		ArtifactKind: "jar",
		PerFile:      200 * time.Millisecond,
	}
}

// CRecipe drives make.
func CRecipe() Recipe {
	return Recipe{
		Metadata: domain.PluginMetadata{
			Name:                "c",
			Version:             builtinVersion,
			Description:         "C sources via make",
			SupportedExtensions: []string{".c", ".h"},
			Capabilities: []domain.Capability{
				domain.CapIncrementalBuild,
				domain.CapParallelBuild,
				domain.CapDependencyResolution,
				domain.CapCacheOptimization,
				domain.CapTesting,
			},
		},
		Patterns: []domain.FilePattern{
			{Extension: ".c", Priority: 10, RequiredFiles: []string{"Makefile"}},
			{Extension: ".c", Priority: 8, RequiredFiles: []string{"CMakeLists.txt"}},
			{Extension: ".c", Priority: 5},
			{Extension: ".h", Priority: 3},
		},
		Manifests: []string{"Makefile", "CMakeLists.txt", "configure"},
		Tools:     []string{"make", "cc"},
		Build:     Step{Commands: []string{"make ${make_target}"}, Defaults: map[string]string{"make_target": "all"}},
		Clean:     Step{Commands: []string{"make clean"}},
		Test:      &Step{Commands: []string{"make test"}},
		Artifacts: []string{"build"},
		PerFile:   100 * time.Millisecond,
	}
}

// Recipes lists the built-in recipes in registration order.
func Recipes() []Recipe {
	return []Recipe{GoRecipe(), PythonRecipe(), TypeScriptRecipe(), KotlinRecipe(), CRecipe()}
}

// Builtins returns one factory per built-in recipe.
type Builtins struct {
	runner ports.CommandRunner
	probe  ports.SystemProbe
	walker *fs.Walker
	hasher *fs.Hasher
}

// NewBuiltins creates the built-in plugin set.
func NewBuiltins(runner ports.CommandRunner, probe ports.SystemProbe, walker *fs.Walker, hasher *fs.Hasher) *Builtins {
	return &Builtins{runner: runner, probe: probe, walker: walker, hasher: hasher}
}

// Factories returns a factory per built-in recipe, using runner for commands.
// A nil runner selects the one the set was created with.
func (b *Builtins) Factories(runner ports.CommandRunner) []registry.Factory {
	if runner == nil {
		runner = b.runner
	}

	recipes := Recipes()
	out := make([]registry.Factory, len(recipes))
	for i, recipe := range recipes {
		out[i] = func() (ports.Plugin, error) {
			return NewToolchain(recipe, runner, b.probe, b.walker, b.hasher), nil
		}
	}
	return out
}
