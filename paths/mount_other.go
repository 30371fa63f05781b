//go:build !(aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris)

package paths

import (
	"path/filepath"
)

// isMount only recognizes the filesystem (or volume) root on this platform.
func isMount(dir string) bool {
	return filepath.Dir(dir) == dir
}
