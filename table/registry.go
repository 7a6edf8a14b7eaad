package table

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/tablekv/tablekv/internal/format"
	"github.com/tablekv/tablekv/internal/index"
	"github.com/tablekv/tablekv/internal/mmfile"
)

const (
	// Suffix every table path must end with.
	Suffix = ".tkv"

	// MaxNameLen bounds the derived table name (base name plus node digit,
	// suffix excluded).
	MaxNameLen = 24

	// ExtentSize is the unit the region size must be a multiple of.
	ExtentSize = format.ExtentSize
)

// Registry multiplexes table handles: a given (name, node) pair maps to at
// most one live Table, shared between openers and released when the last one
// closes. Construct one per process with NewRegistry and pass it to whatever
// needs to open tables; there is no package-global instance.
type Registry struct {
	mu     sync.Mutex
	tables map[string]*Table
	log    *slog.Logger
}

// TableInfo is one row of the open-tables report.
type TableInfo struct {
	Name    string `json:"name"`
	Node    int    `json:"node"`
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	Used    int64  `json:"used"`
	Records int    `json:"records"`
	Openers int    `json:"openers"`
}

// NewRegistry returns an empty registry. log may be nil to disable logging.
func NewRegistry(log *slog.Logger) *Registry {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		tables: make(map[string]*Table),
		log:    log,
	}
}

// Open returns a handle on the table at path for the given placement node,
// mapping and initializing the backing region when the table is not already
// open. path must end in ".tkv" and carry a directory component, so a short
// table name can be derived; the physical file is "<dir>/<name><node>.tkv",
// one instance per node. size must be a positive multiple of ExtentSize; it
// is ignored when the table is already open, and when mapping an existing
// file it must equal the file's size or Open fails.
//
// Open may wait on file I/O. Never call it from a context that cannot
// block; every other table operation is non-blocking.
func (g *Registry) Open(path string, size int64, recSizeHint int, node int) (*Table, error) {
	if node < 0 || node > 9 {
		return nil, fmt.Errorf("%w: %d", ErrBadNode, node)
	}
	if !strings.HasSuffix(path, Suffix) {
		return nil, fmt.Errorf("%w: %q must end in %q", ErrBadPath, path, Suffix)
	}
	slash := strings.LastIndexByte(path, '/')
	if slash < 0 {
		return nil, fmt.Errorf("%w: %q has no directory; use an absolute-style path", ErrBadPath, path)
	}
	base := path[slash+1 : len(path)-len(Suffix)]
	if base == "" {
		return nil, fmt.Errorf("%w: empty name in %q", ErrBadPath, path)
	}
	name := fmt.Sprintf("%s%d", base, node)
	if len(name) > MaxNameLen {
		return nil, fmt.Errorf("%w: %q is %d bytes, max %d", ErrBadName, name, len(name), MaxNameLen)
	}
	if size <= 0 || size%ExtentSize != 0 {
		return nil, fmt.Errorf("%w: %d is not a positive multiple of %d", ErrBadSize, size, int64(ExtentSize))
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if t, ok := g.tables[name]; ok {
		t.refs++
		g.log.Debug("reusing table handle", "table", t.name, "openers", t.refs)
		return t, nil
	}

	filePath := path[:slash+1] + name + Suffix
	f, err := mmfile.Map(filePath, size)
	if err != nil {
		return nil, fmt.Errorf("open table %q: %w", filePath, err)
	}
	root, err := index.Init(f.Bytes(), uint32(recSizeHint))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open table %q: %w", filePath, err)
	}

	t := &Table{
		path: filePath,
		name: name + Suffix,
		node: node,
		refs: 1,
		f:    f,
		root: root,
	}
	g.tables[name] = t
	g.log.Info("opened table", "table", t.name, "size", size, "recSizeHint", recSizeHint)
	return t, nil
}

// Close drops one opener. The last close shuts the engine down, unmaps the
// region and forgets the handle; the table stays fully usable for the
// remaining openers until then.
func (g *Registry) Close(t *Table) error {
	if t == nil {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	t.refs--
	if t.refs > 0 {
		return nil
	}
	return g.closeLocked(t)
}

// ShutdownAll closes every still-open handle unconditionally. Process
// teardown only: by then no concurrent users are assumed, so open counts are
// not negotiated.
func (g *Registry) ShutdownAll() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var errs []error
	for _, t := range g.tables {
		if err := g.closeLocked(t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (g *Registry) closeLocked(t *Table) error {
	delete(g.tables, strings.TrimSuffix(t.name, Suffix))
	t.root.Shutdown()
	err := t.f.Close()
	g.log.Info("closed table", "table", t.name)
	if err != nil {
		return fmt.Errorf("close table %q: %w", t.name, err)
	}
	return nil
}

// Info reports the open tables, sorted by nothing in particular.
func (g *Registry) Info() []TableInfo {
	g.mu.Lock()
	defer g.mu.Unlock()

	infos := make([]TableInfo, 0, len(g.tables))
	for _, t := range g.tables {
		infos = append(infos, TableInfo{
			Name:    t.name,
			Node:    t.node,
			Path:    t.path,
			Size:    t.Size(),
			Used:    t.UsedBytes(),
			Records: t.Records(),
			Openers: t.refs,
		})
	}
	return infos
}
