//go:build ignore

// This program generates pattern file fixtures with specific encodings.
// Run with: go run fixtures_gen.go
//
// It creates:
//   - crlf.patterns: Windows line endings (CRLF)
//   - with-bom.patterns: UTF-8 BOM prefix
//   - pathological.patterns: stacked globstars for the matcher
//   - realistic/large.patterns: 600+ ignore rules for benchmarking

package main

import (
	"fmt"
	"os"
	"path/filepath"
)

func main() {
	dir := "."
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	generators := []struct {
		name string
		fn   func() []byte
	}{
		{"crlf.patterns", generateCRLF},
		{"with-bom.patterns", generateWithBOM},
		{"pathological.patterns", generatePathological},
		{"realistic/large.patterns", generateLarge},
	}

	for _, g := range generators {
		path := filepath.Join(dir, g.name)

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating directory for %s: %v\n", path, err)
			continue
		}

		content := g.fn()
		if err := os.WriteFile(path, content, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			continue
		}
		fmt.Printf("Generated: %s (%d bytes)\n", path, len(content))
	}
}

// generateCRLF creates a pattern file with Windows CRLF line endings
func generateCRLF() []byte {
	lines := []string{
		"# Windows line endings test",
		"src/**/*.ts",
		"!**/*.test.ts",
		"",
		"# Directories only",
		"build/",
		"docs/**/*.md",
	}

	var content []byte
	for _, line := range lines {
		content = append(content, []byte(line)...)
		content = append(content, '\r', '\n') // CRLF
	}
	return content
}

// generateWithBOM creates a pattern file with a UTF-8 BOM prefix
func generateWithBOM() []byte {
	bom := []byte{0xEF, 0xBB, 0xBF}
	content := []byte(`# UTF-8 BOM test file
# The BOM (EF BB BF) should be stripped during parsing

*.log
!**/node_modules/**

# Unicode patterns
日本語.txt
données/*
`)
	return append(bom, content...)
}

// generatePathological creates patterns that stress the globstar search
func generatePathological() []byte {
	return []byte(`# Pathological patterns for stress testing the globstar search

# Stacked globstars
**/**/**/x
**/**/**/**/**/**/**/**/x
a/**/b/**/c/**/d/**/e

# Globstars separated by wildcards
**/a*/**/b*/**/c*
**/*a*/**/*a*/**/*a*/**/*b

# Deeply nested globstar
src/**/internal/**/generated/**
`)
}

// generateLarge creates 600+ rules for benchmark testing
func generateLarge() []byte {
	var content []byte
	content = append(content, []byte("# Large ignore list for benchmark testing\n\n")...)

	common := []string{
		"**/*.log", "**/*.tmp", "**/*.bak", "**/*.swp", "**/*.swo",
		"build/**", "dist/**", "out/**", "target/**",
		"**/node_modules/**", "vendor/**", "**/.venv/**",
		"**/.git/**", "**/.svn/**", "**/.hg/**",
		"**/.idea/**", "**/.vscode/**", "**/*.sublime-*",
		"**/.DS_Store", "**/Thumbs.db", "**/desktop.ini",
		"**/*.pyc", "**/*.pyo", "**/__pycache__/**",
		"**/*.class", "**/*.jar",
		"**/*.o", "**/*.a", "**/*.so", "**/*.dylib",
		"**/*.exe", "**/*.dll",
	}

	for _, p := range common {
		content = append(content, []byte(p+"\n")...)
	}

	content = append(content, []byte("\n# Generated patterns\n")...)

	prefixes := []string{"", "src/", "lib/", "pkg/", "internal/", "test/"}
	extensions := []string{".log", ".tmp", ".cache", ".out", ".gen"}

	for i := 0; i < 20; i++ {
		for _, prefix := range prefixes {
			for _, ext := range extensions {
				pattern := fmt.Sprintf("%sgen%d/*%s\n", prefix, i, ext)
				content = append(content, []byte(pattern)...)
			}
		}
	}

	content = append(content, []byte("\n# Pruned directories\n")...)
	for i := 0; i < 10; i++ {
		content = append(content, []byte(fmt.Sprintf("**/generated%d/**\n", i))...)
		content = append(content, []byte(fmt.Sprintf("**/.cache%d/**\n", i))...)
	}

	return content
}
