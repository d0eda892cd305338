// Package overwrite decides whether an existing destination file may be
// replaced by an incoming source file.
package overwrite

import (
	"fmt"
	"io/fs"
	"strings"
	"time"
)

// Policy is one of a small fixed set of overwrite rules.
type Policy int

const (
	// Default replaces a file only with a larger one that is not older.
	Default Policy = iota
	// Never keeps every existing file.
	Never
	// Always replaces every existing file.
	Always
)

var policyNames = [...]string{
	Default: "default",
	Never:   "never",
	Always:  "always",
}

func (p Policy) String() string {
	if p >= 0 && int(p) < len(policyNames) {
		return policyNames[p]
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// Parse converts a policy name (never, always, default) into a Policy.
func Parse(s string) (Policy, error) {
	for p, name := range policyNames {
		if strings.EqualFold(s, name) {
			return Policy(p), nil
		}
	}
	return Default, fmt.Errorf("unknown overwrite policy %q (use never, always or default)", s)
}

// Names lists the accepted policy names.
func Names() []string {
	return append([]string(nil), policyNames[:]...)
}

// Metadata is the part of a file's metadata the policy looks at.
type Metadata struct {
	ModTime time.Time
	Size    int64
	Symlink bool
}

// MetadataOf snapshots info, which must come from Lstat so that symlinks
// are reported as such.
func MetadataOf(info fs.FileInfo) Metadata {
	return Metadata{
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Symlink: info.Mode()&fs.ModeSymlink != 0,
	}
}

// Decide reports whether existing may be overwritten by incoming.
//
// Default denies when either side is a symlink, when incoming is not
// strictly larger, or when incoming is strictly older. A zero ModTime on
// either side skips the age check.
func (p Policy) Decide(existing, incoming Metadata) bool {
	switch p {
	case Never:
		return false
	case Always:
		return true
	}

	if existing.Symlink || incoming.Symlink {
		return false
	}
	if incoming.Size <= existing.Size {
		return false
	}
	if !incoming.ModTime.IsZero() && !existing.ModTime.IsZero() &&
		incoming.ModTime.Before(existing.ModTime) {
		return false
	}
	return true
}
