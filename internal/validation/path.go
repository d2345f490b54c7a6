package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// systemDirs are never valid export targets.
var systemDirs = []string{"/etc", "/proc", "/sys", "/dev", "/boot", "/bin", "/sbin", "/usr"}

// ValidateOutputDir checks a directory the static exporter will write into.
func ValidateOutputDir(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("output directory cannot be empty")
	}

	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return fmt.Errorf("output directory %q escapes the working directory", path)
		}
	}

	for _, char := range []string{";", "&", "|", "$", "`", "<", ">"} {
		if strings.Contains(path, char) {
			return fmt.Errorf("output directory contains forbidden character %q", char)
		}
	}

	clean := filepath.Clean(path)
	if clean == "/" || clean == "." {
		return fmt.Errorf("refusing to export into %q", clean)
	}
	for _, dir := range systemDirs {
		if clean == dir || strings.HasPrefix(clean, dir+"/") {
			return fmt.Errorf("refusing to export into system directory %q", clean)
		}
	}

	return nil
}
