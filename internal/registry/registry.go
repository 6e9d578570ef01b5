// Package registry builds and checks hash registries for data-file
// directories. A registry is a sorted text file of "name alg:hex"
// lines with slash-separated relative paths.
package registry

import (
	"bufio"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/san-kum/geoforge/internal/logger"
)

var log = logger.ForComponent("registry")

var (
	// ErrAlgorithm indicates an unsupported hash algorithm.
	ErrAlgorithm = errors.New("registry: unsupported algorithm")

	// ErrNoFiles indicates the directory held nothing to hash.
	ErrNoFiles = errors.New("registry: no files found")
)

// DefaultExcludes are skipped unless the caller overrides them.
var DefaultExcludes = []string{".git", "__pycache__", "*.pyc", ".DS_Store"}

// Options controls a registry build.
type Options struct {
	Algorithm string   // sha256 (default) or md5
	Recursive bool
	Excludes  []string // doublestar patterns matched against base name and relative path
	Workers   int      // hashing goroutines, default 4
}

// Entry is one registered file.
type Entry struct {
	Name string // relative path, slash-separated
	Hash string // "alg:hex"
}

func newHasher(alg string) (func() hash.Hash, error) {
	switch alg {
	case "", "sha256":
		return sha256.New, nil
	case "md5":
		return md5.New, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrAlgorithm, alg)
}

// HashFile streams one file through the named algorithm.
func HashFile(path, alg string) (string, error) {
	mk, err := newHasher(alg)
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := mk()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("registry: hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func excluded(rel string, patterns []string) bool {
	base := filepath.Base(rel)
	for _, pat := range patterns {
		if ok, _ := doublestar.Match(pat, base); ok {
			return true
		}
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
		// A directory pattern excludes everything under it.
		for _, part := range strings.Split(rel, "/") {
			if ok, _ := doublestar.Match(pat, part); ok {
				return true
			}
		}
	}
	return false
}

// discover lists the files to hash, relative slash paths, sorted.
func discover(dir string, opts Options) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("registry: not a directory: %s", dir)
	}

	excludes := opts.Excludes
	if excludes == nil {
		excludes = DefaultExcludes
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if !opts.Recursive || excluded(rel, excludes) {
				return fs.SkipDir
			}
			return nil
		}
		if !excluded(rel, excludes) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFiles, dir)
	}
	sort.Strings(files)
	return files, nil
}

// Build hashes every file under dir and returns the sorted entries.
func Build(dir string, opts Options) ([]Entry, error) {
	alg := opts.Algorithm
	if alg == "" {
		alg = "sha256"
	}
	if _, err := newHasher(alg); err != nil {
		return nil, err
	}
	files, err := discover(dir, opts)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 4
	}
	jobs := make(chan int)
	entries := make([]Entry, len(files))
	errs := make([]error, len(files))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				sum, err := HashFile(filepath.Join(dir, filepath.FromSlash(files[i])), alg)
				if err != nil {
					errs[i] = err
					continue
				}
				entries[i] = Entry{Name: files[i], Hash: alg + ":" + sum}
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	out := entries[:0]
	for i, e := range entries {
		if errs[i] != nil {
			log.Warn("skipping file", "file", files[i], "error", errs[i])
			continue
		}
		out = append(out, e)
	}
	log.Info("registry built", "dir", dir, "files", len(out), "algorithm", alg)
	return out, nil
}

// Write emits the registry lines.
func Write(w io.Writer, entries []Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s %s\n", e.Name, e.Hash); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes the registry to disk.
func WriteFile(path string, entries []Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Parse reads a registry file back into entries. Blank lines and
// #-comments are skipped.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("registry: line %d: want \"name hash\", got %q", line, text)
		}
		entries = append(entries, Entry{Name: fields[0], Hash: fields[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ParseFile reads a registry from disk.
func ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Report lists the differences between a directory and a registry.
type Report struct {
	OK      []string
	Changed []string
	Missing []string // in the registry, not on disk
	Extra   []string // on disk, not in the registry
}

// Clean reports whether the directory matches the registry exactly.
func (r *Report) Clean() bool {
	return len(r.Changed) == 0 && len(r.Missing) == 0 && len(r.Extra) == 0
}

// Verify rehashes the directory and compares it against the registry.
// The algorithm per file comes from the registered hash prefix.
func Verify(dir string, entries []Entry, opts Options) (*Report, error) {
	files, err := discover(dir, opts)
	if err != nil && !errors.Is(err, ErrNoFiles) {
		return nil, err
	}
	onDisk := make(map[string]bool, len(files))
	for _, f := range files {
		onDisk[f] = true
	}

	rep := &Report{}
	for _, e := range entries {
		if !onDisk[e.Name] {
			rep.Missing = append(rep.Missing, e.Name)
			continue
		}
		delete(onDisk, e.Name)
		alg, want, ok := strings.Cut(e.Hash, ":")
		if !ok {
			// Bare hex lines default to sha256, like the builder.
			alg, want = "sha256", e.Hash
		}
		got, err := HashFile(filepath.Join(dir, filepath.FromSlash(e.Name)), alg)
		if err != nil {
			return nil, err
		}
		if got == want {
			rep.OK = append(rep.OK, e.Name)
		} else {
			rep.Changed = append(rep.Changed, e.Name)
		}
	}
	for f := range onDisk {
		rep.Extra = append(rep.Extra, f)
	}
	sort.Strings(rep.Extra)
	return rep, nil
}

// WriteReport prints the verification outcome.
func (r *Report) WriteReport(w io.Writer) {
	fmt.Fprintf(w, "Verified: %d ok, %d changed, %d missing, %d extra\n",
		len(r.OK), len(r.Changed), len(r.Missing), len(r.Extra))
	for _, f := range r.Changed {
		fmt.Fprintf(w, "  changed: %s\n", f)
	}
	for _, f := range r.Missing {
		fmt.Fprintf(w, "  missing: %s\n", f)
	}
	for _, f := range r.Extra {
		fmt.Fprintf(w, "  extra:   %s\n", f)
	}
	if r.Clean() {
		fmt.Fprintln(w, "Status: CLEAN")
	} else {
		fmt.Fprintln(w, "Status: DIRTY")
	}
}
