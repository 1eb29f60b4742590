package fs

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// Native is a billy.Filesystem over the real filesystem that takes
// absolute paths as they are.
type Native struct {
	osfs.ChrootOS
}

// NewNative returns the native filesystem.
func NewNative() *Native {
	return &Native{}
}

// Chroot returns a filesystem rooted at path.
func (n *Native) Chroot(path string) (billy.Filesystem, error) {
	return osfs.New(path), nil
}

// Root returns "/".
func (n *Native) Root() string {
	return "/"
}
