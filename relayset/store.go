package relayset

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
)

// DefaultDir is where DirStore looks for aliases by default.
const DefaultDir = "/etc/power"

// Link is one alias as stored: its name and the raw relay list it points to.
type Link struct {
	Name   string
	Target string
}

// Store is a namespace of alias names. Entries are sorted by name. Lookup
// reports ok false with a nil error for an unknown name.
type Store interface {
	Lookup(name string) (target string, ok bool, err error)
	Entries() ([]Link, error)
}

// DirStore keeps aliases as symbolic links in a directory, the link target
// being the relay list, e.g. /etc/power/lamp -> 3.
type DirStore struct {
	Dir string
}

func (s DirStore) dir() string {
	if s.Dir == "" {
		return DefaultDir
	}
	return s.Dir
}

// Lookup reads the link called name. A missing entry, or one that is not a
// symlink, is not an alias.
func (s DirStore) Lookup(name string) (string, bool, error) {
	if !validName(name) {
		return "", false, nil
	}
	target, err := os.Readlink(filepath.Join(s.dir(), name))
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.EINVAL) ||
		errors.Is(err, syscall.ENOTDIR) {
		return "", false, nil
	} else if err != nil {
		return "", false, err
	}
	return target, true, nil
}

// Entries lists the symlinks of the directory. A missing directory holds no
// aliases.
func (s DirStore) Entries() ([]Link, error) {
	des, err := os.ReadDir(s.dir())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var es []Link
	for _, de := range des {
		if de.Type()&fs.ModeSymlink == 0 || !validName(de.Name()) {
			continue
		}
		target, err := os.Readlink(filepath.Join(s.dir(), de.Name()))
		if err != nil {
			return nil, err
		}
		es = append(es, Link{de.Name(), target})
	}
	return es, nil
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsRune(name, filepath.Separator) &&
		!strings.ContainsRune(name, ',')
}

// MapStore holds aliases in memory.
type MapStore map[string]string

func (s MapStore) Lookup(name string) (string, bool, error) {
	target, ok := s[name]
	return target, ok, nil
}

func (s MapStore) Entries() ([]Link, error) {
	es := make([]Link, 0, len(s))
	for name, target := range s {
		es = append(es, Link{name, target})
	}
	sortEntries(es)
	return es, nil
}

// Stores layers several stores; an earlier store shadows the later ones.
type Stores []Store

func (ss Stores) Lookup(name string) (string, bool, error) {
	for _, s := range ss {
		if target, ok, err := s.Lookup(name); err != nil || ok {
			return target, ok, err
		}
	}
	return "", false, nil
}

func (ss Stores) Entries() ([]Link, error) {
	seen := make(map[string]bool)
	var es []Link
	for _, s := range ss {
		list, err := s.Entries()
		if err != nil {
			return nil, err
		}
		for _, e := range list {
			if !seen[e.Name] {
				seen[e.Name] = true
				es = append(es, e)
			}
		}
	}
	sortEntries(es)
	return es, nil
}

func sortEntries(es []Link) {
	slices.SortFunc(es, func(a, b Link) int {
		return strings.Compare(a.Name, b.Name)
	})
}
