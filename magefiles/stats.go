//go:build mage

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// sourceRoots are the directories whose Go code Stats measures.
var sourceRoots = []string{"cmd", "internal", "pkg"}

// packageStats is one line of Stats output.
type packageStats struct {
	Package   string `json:"package"`
	Files     int    `json:"files"`
	ProdLines int    `json:"prod_lines"`
	TestLines int    `json:"test_lines"`
}

// Stats prints one JSON line per package with its Go line counts, then a
// summary line with totals and the word count of the Markdown docs.
func Stats() error {
	byPkg := map[string]*packageStats{}
	for _, root := range sourceRoots {
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || filepath.Ext(path) != ".go" {
				return nil
			}
			lines, err := lineCount(path)
			if err != nil {
				return err
			}
			dir := filepath.ToSlash(filepath.Dir(path))
			ps, ok := byPkg[dir]
			if !ok {
				ps = &packageStats{Package: dir}
				byPkg[dir] = ps
			}
			ps.Files++
			if strings.HasSuffix(path, "_test.go") {
				ps.TestLines += lines
			} else {
				ps.ProdLines += lines
			}
			return nil
		})
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	dirs := make([]string, 0, len(byPkg))
	for dir := range byPkg {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	var prod, test int
	for _, dir := range dirs {
		ps := byPkg[dir]
		prod += ps.ProdLines
		test += ps.TestLines
		if err := printJSON(ps); err != nil {
			return err
		}
	}

	words, err := markdownWords()
	if err != nil {
		return err
	}
	return printJSON(map[string]int{
		"packages":    len(dirs),
		"go_loc_prod": prod,
		"go_loc_test": test,
		"doc_wc":      words,
	})
}

func printJSON(v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}

func lineCount(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	n := bytes.Count(data, []byte{'\n'})
	if len(data) > 0 && data[len(data)-1] != '\n' {
		n++
	}
	return n, nil
}

// markdownWords counts whitespace-separated words in the top-level *.md
// files.
func markdownWords() (int, error) {
	matches, err := filepath.Glob("*.md")
	if err != nil {
		return 0, err
	}
	total := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, err
		}
		total += len(strings.Fields(string(data)))
	}
	return total, nil
}
