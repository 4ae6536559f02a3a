package finder

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

type Kind string

const (
	KindSource Kind = "source"
	KindDoc    Kind = "doc"
	KindConfig Kind = "config"
)

// FileRecord is one discovered file. Path is relative to the search root and
// slash-separated regardless of platform.
type FileRecord struct {
	Path string
	Size int64
	Kind Kind
}

// NotFoundError reports a search root that does not exist or is not a directory.
type NotFoundError struct {
	Root string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("input directory not found: %s", e.Root)
}

// DefaultPatterns is used when the caller supplies no include patterns.
var DefaultPatterns = []string{
	"*.go", "*.py", "*.js", "*.ts", "*.java", "*.rb", "*.rs",
	"*.c", "*.h", "*.cpp", "*.php", "*.sh",
	"*.md", "*.rst", "*.yaml", "*.yml", "*.json", "*.toml",
}

// DefaultExcludeDirs covers VCS metadata, dependency trees and build output.
var DefaultExcludeDirs = []string{
	".git", ".idea", ".vscode", "node_modules", "vendor",
	"__pycache__", "venv", ".venv", "build", "dist", "target",
}

var docExtensions = map[string]bool{
	".md": true, ".rst": true, ".txt": true, ".adoc": true,
}

var configExtensions = map[string]bool{
	".yaml": true, ".yml": true, ".json": true, ".toml": true,
	".ini": true, ".cfg": true, ".env": true,
}

// Find walks root and returns matching files in a deterministic order:
// within each directory, entries are visited sorted by name, files before
// subdirectories, so repeated runs produce identical sequences. A directory
// whose name equals an exclude entry is pruned entirely. maxCount <= 0 means
// unbounded; otherwise traversal stops once maxCount matches are collected,
// making the result a prefix of the unbounded one.
func Find(root string, patterns, excludeDirs []string, maxCount int) ([]FileRecord, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, &NotFoundError{Root: root}
	}

	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	excluded := make(map[string]bool, len(excludeDirs))
	for _, name := range excludeDirs {
		excluded[name] = true
	}

	var records []FileRecord
	err = walk(root, "", patterns, excluded, maxCount, &records)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func walk(dir, rel string, patterns []string, excluded map[string]bool, maxCount int, records *[]FileRecord) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("error listing directory %s: %w", dir, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var subdirs []os.DirEntry
	for _, entry := range entries {
		if entry.IsDir() {
			if !excluded[entry.Name()] {
				subdirs = append(subdirs, entry)
			}
			continue
		}

		if maxCount > 0 && len(*records) >= maxCount {
			return nil
		}
		if !matchesAny(entry.Name(), patterns) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		*records = append(*records, FileRecord{
			Path: path.Join(rel, entry.Name()),
			Size: info.Size(),
			Kind: detectKind(entry.Name()),
		})
	}

	for _, sub := range subdirs {
		if maxCount > 0 && len(*records) >= maxCount {
			return nil
		}
		err := walk(filepath.Join(dir, sub.Name()), path.Join(rel, sub.Name()), patterns, excluded, maxCount, records)
		if err != nil {
			return err
		}
	}

	return nil
}

func matchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := path.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

func detectKind(name string) Kind {
	ext := strings.ToLower(path.Ext(name))
	switch {
	case docExtensions[ext]:
		return KindDoc
	case configExtensions[ext]:
		return KindConfig
	default:
		return KindSource
	}
}
