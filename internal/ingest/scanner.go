package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ListCSVFiles returns the paths of the .csv files directly under dir, in
// lexical name order. Subdirectories are not descended into.
func ListCSVFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read csv dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}
