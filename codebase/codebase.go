// Package codebase keeps the checked state of a directory of GIFT files and
// serves it to editors.
package codebase

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/giftlint/diagnose"
)

const Ext = ".gift"

var log = commonlog.GetLogger("giftlint.codebase")

// Checker produces a report for the raw content of one file.
type Checker interface {
	CheckRaw(ctx context.Context, name string, raw []byte) (diagnose.Report, error)
}

type Codebase struct {
	mu      sync.RWMutex
	rootDir string
	checker Checker
	files   map[string]*FileInfo
	subs    []func(path string)
}

type FileInfo struct {
	Path    string
	Content []byte
	Report  diagnose.Report
	// Err is set when the content could not be decoded or checked.
	Err error
}

func New(rootDir string, checker Checker) *Codebase {
	return &Codebase{
		rootDir: rootDir,
		checker: checker,
		files:   make(map[string]*FileInfo),
	}
}

func (c *Codebase) RootDir() string {
	return c.rootDir
}

// Subscribe registers fn to be called with the path of every file that was
// updated or removed.
func (c *Codebase) Subscribe(fn func(path string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

func (c *Codebase) ScanAll() error {
	return filepath.Walk(c.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if filepath.Ext(path) == Ext {
			if err := c.ScanFile(path); err != nil {
				log.Warningf("scanning %s: %v", path, err)
			}
		}
		return nil
	})
}

func (c *Codebase) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.UpdateFile(path, content)
}

// UpdateFile checks content and records it as the current state of path.
// Problems with the content itself end up on the FileInfo, not in the
// returned error.
func (c *Codebase) UpdateFile(path string, content []byte) error {
	info := &FileInfo{Path: path, Content: content}
	info.Report, info.Err = c.checker.CheckRaw(context.Background(), path, content)

	c.mu.Lock()
	c.files[path] = info
	subs := c.subs
	c.mu.Unlock()

	c.notify(subs, path)
	return nil
}

func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	_, known := c.files[path]
	delete(c.files, path)
	subs := c.subs
	c.mu.Unlock()

	if known {
		c.notify(subs, path)
	}
}

func (c *Codebase) notify(subs []func(string), path string) {
	for _, fn := range subs {
		fn(path)
	}
}

func (c *Codebase) GetFile(path string) *FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.files[path]
}

// Files returns the known paths in sorted order.
func (c *Codebase) Files() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	paths := make([]string, 0, len(c.files))
	for path := range c.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Reports returns the latest report of every file, ordered by path.
func (c *Codebase) Reports() []diagnose.Report {
	paths := c.Files()
	c.mu.RLock()
	defer c.mu.RUnlock()
	var reports []diagnose.Report
	for _, path := range paths {
		if f := c.files[path]; f != nil && f.Err == nil {
			reports = append(reports, f.Report)
		}
	}
	return reports
}
