package trim

import (
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// DefaultBackupSuffix is appended to the name of a file to get the name of its
// backup copy.
const DefaultBackupSuffix = ".bak"

// backup copies path to a sibling file carrying suffix, overwriting any
// previous backup.
func backup(path, suffix string) error {
	if suffix == "" {
		suffix = DefaultBackupSuffix
	}
	dst := path + suffix
	if err := copyFile(path, dst); err != nil {
		return errors.Wrapf(ErrBackup, "%s: %v", dst, err)
	}
	glog.V(1).Infof("trim: backed up %s", path)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
