// Package docparser implements the Parser interface (spec §4.1) over a
// component-library source tree, one ParsedComponent per component directory.
package docparser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tstypes "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/rcihq/rci/internal/models"
)

const apiUnavailable = "API documentation not available"

// DocParser walks a component directory tree laid out as
// <sourceRoot>/components/<name>/{index.en-US.md,index.ts,demo/*.tsx}.
type DocParser struct{}

func New() *DocParser { return &DocParser{} }

// ParseAllComponents implements parser.Parser.
func (p *DocParser) ParseAllComponents(sourceRoot, packageName string) ([]models.ParsedComponent, error) {
	componentsDir := filepath.Join(sourceRoot, "components")
	entries, err := os.ReadDir(componentsDir)
	if err != nil {
		return nil, fmt.Errorf("list components dir %s: %w", componentsDir, err)
	}

	version := readVersion(sourceRoot)

	var out []models.ParsedComponent
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), "_") {
			continue
		}
		dirName := e.Name()
		componentDir := filepath.Join(componentsDir, dirName)
		componentName := capitalize(dirName)

		doc, perr := parseOne(componentDir, componentName, packageName, version)
		if perr != nil {
			out = append(out, models.ParsedComponent{
				Info:     models.ComponentDoc{PackageName: packageName, ComponentName: componentName},
				FilePath: componentDir,
				Status:   models.ParseError,
				Error:    perr.Error(),
			})
			continue
		}
		out = append(out, models.ParsedComponent{
			Info:     doc,
			FilePath: componentDir,
			Status:   models.ParseSuccess,
		})
	}
	return out, nil
}

func parseOne(componentDir, componentName, packageName, version string) (models.ComponentDoc, error) {
	description := extractDescription(componentDir, componentName)
	api := extractAPI(componentDir)
	examples := extractExamples(componentDir)

	deps, err := extractDependencies(componentDir)
	if err != nil {
		return models.ComponentDoc{}, fmt.Errorf("%s: dependencies: %w", componentName, err)
	}

	return models.ComponentDoc{
		PackageName:   packageName,
		ComponentName: componentName,
		Description:   description,
		API:           api,
		Examples:      examples,
		Tags:          tagsFor(componentName),
		Version:       version,
		Dependencies:  deps,
	}, nil
}

// capitalize splits a dash-separated directory name and uppercases each
// segment's first letter, joining without a separator (spec §4.1 step 1).
func capitalize(name string) string {
	segments := strings.Split(name, "-")
	var b strings.Builder
	for _, s := range segments {
		if s == "" {
			continue
		}
		r := []rune(s)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}

// extractDescription reads index.en-US.md and takes the slab between the
// first "---" separator line and the first subsequent "## " heading.
func extractDescription(componentDir, componentName string) string {
	fallback := componentName + " component"

	data, err := os.ReadFile(filepath.Join(componentDir, "index.en-US.md"))
	if err != nil {
		return fallback
	}
	lines := strings.Split(string(data), "\n")

	start := -1
	for i, l := range lines {
		if strings.TrimSpace(l) == "---" {
			start = i
			break
		}
	}
	if start == -1 {
		return fallback
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), "## ") {
			end = i
			break
		}
	}

	var parts []string
	for i := start + 1; i < end; i++ {
		t := strings.TrimSpace(lines[i])
		if t == "" || t == "---" {
			continue
		}
		parts = append(parts, t)
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, " ")
}

// extractAPI reads index.en-US.md and takes from the first "## API" heading
// up to (but excluding) the next "## " heading.
func extractAPI(componentDir string) string {
	data, err := os.ReadFile(filepath.Join(componentDir, "index.en-US.md"))
	if err != nil {
		return apiUnavailable
	}
	lines := strings.Split(string(data), "\n")

	start := -1
	for i, l := range lines {
		if strings.TrimSpace(l) == "## API" {
			start = i
			break
		}
	}
	if start == -1 {
		return apiUnavailable
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		t := strings.TrimSpace(lines[i])
		if strings.HasPrefix(t, "## ") && t != "## API" {
			end = i
			break
		}
	}

	content := strings.TrimSpace(strings.Join(lines[start+1:end], "\n"))
	if content == "" {
		return apiUnavailable
	}
	return content
}

// extractExamples lists the first 3 (lexicographically sorted) .tsx files
// under <componentDir>/demo, stripping import lines, discarding any that
// are empty after trimming.
func extractExamples(componentDir string) []string {
	demoDir := filepath.Join(componentDir, "demo")
	entries, err := os.ReadDir(demoDir)
	if err != nil {
		return nil
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".tsx") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	if len(names) > 3 {
		names = names[:3]
	}

	var examples []string
	for _, n := range names {
		data, err := os.ReadFile(filepath.Join(demoDir, n))
		if err != nil {
			continue
		}
		var kept []string
		for _, l := range strings.Split(string(data), "\n") {
			if strings.HasPrefix(strings.TrimSpace(l), "import") {
				continue
			}
			kept = append(kept, l)
		}
		text := strings.TrimSpace(strings.Join(kept, "\n"))
		if text == "" {
			continue
		}
		examples = append(examples, text)
	}
	return examples
}

// extractDependencies parses <componentDir>/index.ts and walks its AST for
// import_statement nodes whose source starts with "../", capturing the
// first path segment of the remainder and capitalizing it. Unlike
// description/API/examples/version, this step has no defined fallback: a
// missing or unreadable index.ts is a per-component parse failure. Syntax
// errors in index.ts do not fail the parse; tree-sitter still yields a tree.
func extractDependencies(componentDir string) ([]string, error) {
	path := filepath.Join(componentDir, "index.ts")
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	lang := tree_sitter.NewLanguage(tstypes.LanguageTypescript())
	ps := tree_sitter.NewParser()
	defer ps.Close()
	if err := ps.SetLanguage(lang); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}
	tree := ps.Parse(code, nil)
	if tree == nil {
		return nil, fmt.Errorf("parse %s: nil tree", path)
	}
	defer tree.Close()

	seen := make(map[string]bool)
	var deps []string

	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if n.Kind() == "import_statement" {
			if src := n.ChildByFieldName("source"); src != nil {
				raw := string(code[src.StartByte():src.EndByte()])
				lit := strings.Trim(raw, `"'`)
				if dep, ok := firstSegmentAfterParent(lit); ok {
					if !seen[dep] {
						seen[dep] = true
						deps = append(deps, dep)
					}
				}
			}
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())

	return deps, nil
}

// firstSegmentAfterParent extracts the first path segment following a
// leading "../" in an import source, capitalized (spec §4.1 step 6).
func firstSegmentAfterParent(source string) (string, bool) {
	const parent = "../"
	if !strings.HasPrefix(source, parent) {
		return "", false
	}
	rest := strings.TrimPrefix(source, parent)
	segment := rest
	if i := strings.Index(rest, "/"); i >= 0 {
		segment = rest[:i]
	}
	if segment == "" {
		return "", false
	}
	return capitalize(segment), true
}

func readVersion(sourceRoot string) string {
	data, err := os.ReadFile(filepath.Join(sourceRoot, "package.json"))
	if err != nil {
		return "1.0.0"
	}
	var pkg struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil || pkg.Version == "" {
		return "1.0.0"
	}
	return pkg.Version
}
