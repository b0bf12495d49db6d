package util

import (
	"path/filepath"
	"strings"
)

// ComputeBaseHref returns the relative prefix from a page back to the site
// root, so a page at posts/a/b.html gets "../../".
func ComputeBaseHref(relPath string) string {
	dir := filepath.Dir(relPath)
	if dir == "." {
		return ""
	}
	depth := strings.Count(dir, string(filepath.Separator)) + 1
	return strings.Repeat("../", depth)
}

// SlashPath cleans p and converts it to forward slashes, the form page paths
// are matched in.
func SlashPath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}
