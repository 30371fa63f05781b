//go:build !(aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris)

package imageprint

import (
	"os"

	"golang.org/x/crypto/ssh/terminal"
)

// GetTermSize returns the terminal size in cells. Pixel sizes are not known
// on this platform.
func GetTermSize() (TermSize, error) {
	w, h, err := terminal.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return TermSize{}, err
	}
	return TermSize{WSRow: uint(h), WSCol: uint(w)}, nil
}
