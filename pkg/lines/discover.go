package lines

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Page is one page image paired with its hOCR markup file
type Page struct {
	ImagePath  string
	MarkupPath string
}

// Name returns the page image's file name without its extension
func (p Page) Name() string {
	return baseName(p.ImagePath)
}

func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Discover recursively lists the files under dir whose extension is in
// extensions (case-insensitive). The result is sorted.
func Discover(dir string, extensions []string) ([]string, error) {
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = true
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if allowed[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// MarkupCandidates returns the markup file names tried for an image, in
// order of precedence: "<name>.hocr" first, then "<name>.<ext>.hocr".
func MarkupCandidates(imagePath, suffix string) []string {
	return []string{
		baseName(imagePath) + suffix,
		filepath.Base(imagePath) + suffix,
	}
}

// Pair finds the markup file for each image in markupDir. Images without
// markup are returned separately so the caller can report them.
func Pair(images []string, markupDir, suffix string) (pages []Page, unpaired []string) {
	for _, imagePath := range images {
		markupPath := ""
		for _, candidate := range MarkupCandidates(imagePath, suffix) {
			path := filepath.Join(markupDir, candidate)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				markupPath = path
				break
			}
		}

		if markupPath == "" {
			unpaired = append(unpaired, imagePath)
			continue
		}
		pages = append(pages, Page{ImagePath: imagePath, MarkupPath: markupPath})
	}
	return pages, unpaired
}

// UniqueNames keeps the first page for each page name. Pages found in
// different subdirectories can share a name, and since crops are named after
// the page they would overwrite each other. The skipped image paths are
// returned keyed by name.
func UniqueNames(pages []Page) (unique []Page, duplicates map[string][]string) {
	seen := make(map[string]bool, len(pages))
	for _, page := range pages {
		name := page.Name()
		if seen[name] {
			if duplicates == nil {
				duplicates = make(map[string][]string)
			}
			duplicates[name] = append(duplicates[name], page.ImagePath)
			continue
		}
		seen[name] = true
		unique = append(unique, page)
	}
	return unique, duplicates
}
