package match

import "path/filepath"

// Paths maps a file of the old scan to its name in the new scan.
type Paths interface {
	// NewPath reports false when the file was deleted.
	NewPath(old string) (string, bool)
}

// SamePaths assumes no file was renamed or deleted.
type SamePaths struct{}

func (SamePaths) NewPath(old string) (string, bool) {
	return filepath.Clean(old), true
}

// Renames maps old paths to new ones. Files it does not name keep their path.
type Renames struct {
	Moved   map[string]string
	Deleted map[string]struct{}
}

func NewRenames() *Renames {
	return &Renames{Moved: make(map[string]string), Deleted: make(map[string]struct{})}
}

func (r *Renames) Move(old, new string) {
	r.Moved[filepath.Clean(old)] = filepath.Clean(new)
}

func (r *Renames) Delete(old string) {
	r.Deleted[filepath.Clean(old)] = struct{}{}
}

func (r *Renames) NewPath(old string) (string, bool) {
	old = filepath.Clean(old)
	if _, gone := r.Deleted[old]; gone {
		return "", false
	}
	if moved, ok := r.Moved[old]; ok {
		return moved, true
	}
	return old, true
}
