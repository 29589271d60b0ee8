// Package health reports operational readiness: whether the remote session
// is connected and whether the download base path is usable.
package health

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// checkBasePath verifies that the download base path is an accessible,
// writable directory. Writability is exercised with a uniquely named temp
// file so the check works across platforms. Returns (ok, detail) where
// detail describes the problem when not ok.
func checkBasePath(path string) (bool, string) {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return false, fmt.Sprintf("path does not exist: %s", path)
	case os.IsPermission(err):
		return false, fmt.Sprintf("permission denied: %s", path)
	case err != nil:
		return false, fmt.Sprintf("cannot access path: %v", err)
	case !info.IsDir():
		return false, fmt.Sprintf("path is not a directory: %s", path)
	}

	tempPath := filepath.Join(path, fmt.Sprintf(".jdbridge_health_check_%s", uuid.New().String()[:8]))
	file, err := os.Create(tempPath)
	if err != nil {
		if os.IsPermission(err) {
			return false, fmt.Sprintf("folder is read-only: %s", path)
		}
		return false, fmt.Sprintf("cannot write to folder: %v", err)
	}

	if _, err := file.Write([]byte("health check")); err != nil {
		file.Close()
		os.Remove(tempPath)
		return false, fmt.Sprintf("cannot write data: %v", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return false, fmt.Sprintf("cannot close temp file: %v", err)
	}
	if err := os.Remove(tempPath); err != nil {
		return false, fmt.Sprintf("cannot remove temp file: %v", err)
	}

	return true, ""
}
