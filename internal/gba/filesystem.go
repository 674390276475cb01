package gba

import "io"

// FilesystemManager resolves user-selected paths and brokers access to
// files that live outside managed storage.
type FilesystemManager interface {
	// Resolve turns a raw path into an absolute Path, rejecting symlinks,
	// devices, pipes and sockets.
	Resolve(rawPath string) (*Path, error)

	// Access acquires scoped read access to an external file. Access lasts
	// until the returned reader is closed; callers close it on every exit
	// path. A source that cannot be read yields an error wrapping
	// ErrScopedAccessDenied.
	Access(path *Path) (io.ReadCloser, error)

	// FindFiles lists regular files in a directory, descending into
	// subdirectories when recursive is true.
	FindFiles(path *Path, recursive bool) ([]*Path, error)
}
