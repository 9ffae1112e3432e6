package fs

import (
	"os"
	"strconv"
	"sync"
	"syscall"
)

// Op names a filesystem operation that [Faulty] can fail.
type Op string

// Operations understood by [Faulty].
const (
	OpOpen      Op = "open"
	OpCreate    Op = "create"
	OpReadFile  Op = "readfile"
	OpWriteFile Op = "writefile"
	OpMkdirAll  Op = "mkdirall"
	OpStat      Op = "stat"
	OpRemove    Op = "remove"
	OpRename    Op = "rename"
)

// Faulty wraps another [FS] and fails selected operations on demand.
//
// Unlike [Real], its WriteFileAtomic is composed from its own WriteFile and
// Rename, so a fault on either step behaves like a crash at that point:
//   - a WriteFile fault leaves a truncated temp file behind
//   - a Rename fault leaves the complete temp file behind and the target untouched
//
// Example:
//
//	f := fs.NewFaulty(fs.NewReal())
//	f.FailNext(fs.OpRename, fs.Suffix("documents.json"), nil)
//	err := f.WriteFileAtomic(dbPath, data, 0o644) // injected EIO, dbPath unchanged
type Faulty struct {
	inner FS

	mu     sync.Mutex
	rules  []faultRule
	tmpSeq int
}

type faultRule struct {
	op        Op
	match     func(path string) bool
	err       error
	remaining int // < 0 means unlimited
}

// NewFaulty returns a [Faulty] that passes everything through to inner
// until a fault is registered.
func NewFaulty(inner FS) *Faulty {
	return &Faulty{inner: inner}
}

// FailNext fails the next op whose path satisfies match (nil matches all).
// A nil err injects EIO.
func (f *Faulty) FailNext(op Op, match func(path string) bool, err error) {
	f.addRule(op, match, err, 1)
}

// FailAlways fails every op whose path satisfies match until [Faulty.Reset].
func (f *Faulty) FailAlways(op Op, match func(path string) bool, err error) {
	f.addRule(op, match, err, -1)
}

// Reset removes all registered faults.
func (f *Faulty) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.rules = nil
}

// Suffix returns a matcher for paths ending in s.
func Suffix(s string) func(string) bool {
	return func(path string) bool {
		return len(path) >= len(s) && path[len(path)-len(s):] == s
	}
}

func (f *Faulty) addRule(op Op, match func(string) bool, err error, n int) {
	if err == nil {
		err = syscall.EIO
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.rules = append(f.rules, faultRule{op: op, match: match, err: err, remaining: n})
}

// fault returns the injected error for (op, path), consuming one-shot rules.
func (f *Faulty) fault(op Op, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.rules {
		rule := &f.rules[i]
		if rule.op != op || rule.remaining == 0 {
			continue
		}

		if rule.match != nil && !rule.match(path) {
			continue
		}

		if rule.remaining > 0 {
			rule.remaining--
		}

		return &InjectedError{Op: string(op), Path: path, Err: rule.err}
	}

	return nil
}

func (f *Faulty) Open(path string) (File, error) {
	if err := f.fault(OpOpen, path); err != nil {
		return nil, err
	}

	return f.inner.Open(path)
}

func (f *Faulty) Create(path string) (File, error) {
	if err := f.fault(OpCreate, path); err != nil {
		return nil, err
	}

	return f.inner.Create(path)
}

func (f *Faulty) ReadFile(path string) ([]byte, error) {
	if err := f.fault(OpReadFile, path); err != nil {
		return nil, err
	}

	return f.inner.ReadFile(path)
}

// WriteFile writes the first half of data before returning an injected
// fault, the way a crash mid-write would.
func (f *Faulty) WriteFile(path string, data []byte, perm os.FileMode) error {
	if err := f.fault(OpWriteFile, path); err != nil {
		_ = f.inner.WriteFile(path, data[:len(data)/2], perm)

		return err
	}

	return f.inner.WriteFile(path, data, perm)
}

func (f *Faulty) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	f.mu.Lock()
	f.tmpSeq++
	tmp := path + ".tmp-" + strconv.Itoa(f.tmpSeq)
	f.mu.Unlock()

	err := f.WriteFile(tmp, data, perm)
	if err != nil {
		return err
	}

	return f.Rename(tmp, path)
}

func (f *Faulty) MkdirAll(path string, perm os.FileMode) error {
	if err := f.fault(OpMkdirAll, path); err != nil {
		return err
	}

	return f.inner.MkdirAll(path, perm)
}

func (f *Faulty) Stat(path string) (os.FileInfo, error) {
	if err := f.fault(OpStat, path); err != nil {
		return nil, err
	}

	return f.inner.Stat(path)
}

func (f *Faulty) Exists(path string) (bool, error) {
	if err := f.fault(OpStat, path); err != nil {
		return false, err
	}

	return f.inner.Exists(path)
}

func (f *Faulty) Remove(path string) error {
	if err := f.fault(OpRemove, path); err != nil {
		return err
	}

	return f.inner.Remove(path)
}

// Rename is matched against the destination path.
func (f *Faulty) Rename(oldpath, newpath string) error {
	if err := f.fault(OpRename, newpath); err != nil {
		return err
	}

	return f.inner.Rename(oldpath, newpath)
}

// Compile-time interface check.
var _ FS = (*Faulty)(nil)
