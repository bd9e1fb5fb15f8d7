package exchange

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FindAlgorithmCommand locates the algorithm entry inside dir by file-name
// prefix and returns the shell command that runs it, dispatched on the file
// extension. An empty result means nothing matched and the caller should use
// its built-in policy.
func FindAlgorithmCommand(dir, entryPrefix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("scan algorithm dir %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), entryPrefix) {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return "", nil
	}
	sort.Strings(names)
	name := names[0]

	switch filepath.Ext(name) {
	case ".py":
		return "python3 " + name, nil
	case ".sh":
		return "sh " + name, nil
	case ".jar":
		return "java -jar " + name, nil
	case ".class":
		return "java " + strings.TrimSuffix(name, ".class"), nil
	case "", ".out", ".bin":
		return "./" + name, nil
	}
	return "", fmt.Errorf("algorithm entry %s has an unsupported extension", name)
}
