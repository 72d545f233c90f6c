// Package workspace gathers the raw material for an analysis round
// from the local filesystem: file content, language, framework hints,
// project structure and dependencies.
package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/saishankar404/tidy/pkg/model"
)

const maxStructureEntries = 30

var languageByExt = map[string]string{
	".ts":   "typescript",
	".tsx":  "typescript",
	".js":   "javascript",
	".jsx":  "javascript",
	".go":   "go",
	".py":   "python",
	".rs":   "rust",
	".java": "java",
	".rb":   "ruby",
	".css":  "css",
	".html": "html",
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
}

// Gather builds the CodeContext for a single file.
func Gather(path string) (model.CodeContext, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return model.CodeContext{}, fmt.Errorf("read %s: %w", path, err)
	}

	cctx := model.CodeContext{
		FilePath: path,
		Content:  string(content),
		Language: DetectLanguage(path),
	}

	root := findProjectRoot(filepath.Dir(path))
	if root != "" {
		cctx.Dependencies = readDependencies(root)
		cctx.Framework = detectFramework(cctx.Dependencies)
		cctx.ProjectStructure = listStructure(root)
	}
	return cctx, nil
}

// DetectLanguage maps a file extension to its language name.
func DetectLanguage(path string) string {
	if lang, ok := languageByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return "plaintext"
}

// findProjectRoot walks up from dir looking for a dependency manifest.
func findProjectRoot(dir string) string {
	for i := 0; i < 8; i++ {
		for _, manifest := range []string{"package.json", "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, manifest)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
	return ""
}

// readDependencies extracts declared dependencies from package.json or
// go.mod, whichever the project carries.
func readDependencies(root string) []string {
	if deps := readPackageJSON(filepath.Join(root, "package.json")); deps != nil {
		return deps
	}
	return readGoMod(filepath.Join(root, "go.mod"))
}

func readPackageJSON(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var manifest struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil
	}
	var deps []string
	for name := range manifest.Dependencies {
		deps = append(deps, name)
	}
	for name := range manifest.DevDependencies {
		deps = append(deps, name)
	}
	sort.Strings(deps)
	return deps
}

func readGoMod(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var deps []string
	inBlock := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "require ("):
			inBlock = true
		case inBlock && line == ")":
			inBlock = false
		case inBlock && line != "" && !strings.HasPrefix(line, "//"):
			fields := strings.Fields(line)
			if len(fields) >= 1 {
				deps = append(deps, fields[0])
			}
		case strings.HasPrefix(line, "require ") && !strings.Contains(line, "("):
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				deps = append(deps, fields[1])
			}
		}
	}
	sort.Strings(deps)
	return deps
}

var frameworkMarkers = []struct {
	dep  string
	name string
}{
	{"react", "react"},
	{"vue", "vue"},
	{"@angular/core", "angular"},
	{"svelte", "svelte"},
	{"express", "express"},
	{"next", "nextjs"},
	{"github.com/gin-gonic/gin", "gin"},
	{"github.com/labstack/echo", "echo"},
}

func detectFramework(deps []string) string {
	for _, marker := range frameworkMarkers {
		for _, dep := range deps {
			if dep == marker.dep {
				return marker.name
			}
		}
	}
	return ""
}

// listStructure returns a shallow file listing of the project root so
// prompts can mention neighboring files without drowning in them.
func listStructure(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}
	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor" {
			continue
		}
		if entry.IsDir() {
			name += "/"
		}
		out = append(out, name)
		if len(out) >= maxStructureEntries {
			break
		}
	}
	sort.Strings(out)
	return out
}
