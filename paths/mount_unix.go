//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package paths

import (
	"path/filepath"

	"golang.org/x/sys/unix"
)

// isMount reports whether dir is a mount point: its parent lives on another
// device, or it is its own parent.
func isMount(dir string) bool {
	parent := filepath.Dir(dir)
	if parent == dir {
		return true
	}

	var st, pst unix.Stat_t
	if err := unix.Lstat(dir, &st); err != nil {
		return false
	}
	if err := unix.Lstat(parent, &pst); err != nil {
		return false
	}
	if st.Dev != pst.Dev {
		return true
	}
	return st.Ino == pst.Ino
}
