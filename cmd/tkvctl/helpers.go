package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tablekv/tablekv/table"
)

// derivedPath mirrors the registry's identity rule: the physical file for
// "<dir>/<name>.tkv" on a node is "<dir>/<name><node>.tkv".
func derivedPath(path string, node int) (string, error) {
	if !strings.HasSuffix(path, table.Suffix) {
		return "", fmt.Errorf("table path must end in %s: %s", table.Suffix, path)
	}
	slash := strings.LastIndexByte(path, '/')
	if slash < 0 {
		return "", fmt.Errorf("table path must contain a directory: %s", path)
	}
	base := path[:len(path)-len(table.Suffix)]
	return fmt.Sprintf("%s%d%s", base, node, table.Suffix), nil
}

// openExisting opens a table whose backing file already exists, taking the
// region size from the file.
func openExisting(reg *table.Registry, path string) (*table.Table, error) {
	phys, err := derivedPath(path, node)
	if err != nil {
		return nil, err
	}
	st, err := os.Stat(phys)
	if err != nil {
		return nil, fmt.Errorf("no table at %s (create it first): %w", phys, err)
	}
	return reg.Open(path, st.Size(), 0, node)
}

// parseKey accepts decimal or 0x-prefixed hexadecimal 64-bit keys.
func parseKey(s string) (uint64, error) {
	key, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("bad key %q: %w", s, err)
	}
	return key, nil
}

// recordBytes concatenates the logical payload of a record across its
// continuation fragments.
func recordBytes(rec *table.Record) []byte {
	out := make([]byte, 0, rec.Len())
	for r := rec; r != nil; r = r.NextFragment() {
		out = append(out, r.Payload()...)
	}
	return out
}

// preview renders payload bytes for terminal output.
func preview(b []byte, max int) string {
	s := b
	truncated := false
	if len(s) > max {
		s, truncated = s[:max], true
	}
	printable := true
	for _, c := range s {
		if c < 0x20 || c > 0x7e {
			printable = false
			break
		}
	}
	var out string
	if printable {
		out = string(s)
	} else {
		out = fmt.Sprintf("%x", s)
	}
	if truncated {
		out += "..."
	}
	return out
}
