package director

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ExportPath creates a timestamped YAML export filename inside dir
func ExportPath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, "plans", fmt.Sprintf("plan_%s.yaml", timestamp))
}

// FindLatestPlan finds the most recent plan file (.json, .yaml or .yml) under dir and dir/plans
func FindLatestPlan(dir string) (string, error) {
	var plans []string
	for _, d := range []string{dir, filepath.Join(dir, "plans")} {
		entries, err := os.ReadDir(d)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() && isPlanFile(entry.Name()) {
				plans = append(plans, filepath.Join(d, entry.Name()))
			}
		}
	}

	if len(plans) == 0 {
		return "", fmt.Errorf("no plan files found in %s", dir)
	}

	// Sort by modification time (newest first)
	sort.Slice(plans, func(i, j int) bool {
		infoI, errI := os.Stat(plans[i])
		infoJ, errJ := os.Stat(plans[j])
		if errI != nil || errJ != nil {
			return errJ != nil && errI == nil
		}
		return infoI.ModTime().After(infoJ.ModTime())
	})

	return plans[0], nil
}

// ReadPlan reads a plan file, choosing the format by extension.
func ReadPlan(path string) (Plan, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ReadPlanYAML(path)
	default:
		return ReadPlanJSON(path)
	}
}

func isPlanFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
