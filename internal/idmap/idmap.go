// Package idmap implements component 4.K: the external-string-id ↔
// internal-uint32 map that aligns the forward index with the PageRank
// graph and the corpus's own document identifiers.
package idmap

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// IDMap is the external ↔ internal document identifier mapping.
type IDMap struct {
	externalToInternal map[string]uint32
	internalToExternal []string
}

// Build assigns dense 0-based internal ids by sorting externalIDs
// lexicographically, grounded on map_generator.cpp.
func Build(externalIDs []string) *IDMap {
	sorted := make([]string, len(externalIDs))
	copy(sorted, externalIDs)
	sort.Strings(sorted)

	m := &IDMap{
		externalToInternal: make(map[string]uint32, len(sorted)),
		internalToExternal: sorted,
	}
	for i, ext := range sorted {
		m.externalToInternal[ext] = uint32(i)
	}
	return m
}

// Internal resolves an external id to its internal doc-id.
func (m *IDMap) Internal(external string) (uint32, bool) {
	id, ok := m.externalToInternal[external]
	return id, ok
}

// External resolves an internal doc-id back to its external id.
func (m *IDMap) External(internal uint32) (string, bool) {
	if int(internal) >= len(m.internalToExternal) {
		return "", false
	}
	return m.internalToExternal[internal], true
}

// Len returns the number of mapped documents, D.
func (m *IDMap) Len() int {
	return len(m.internalToExternal)
}

// Save writes `external-id <sp> internal-id` lines in internal-id order.
func (m *IDMap) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("idmap: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, ext := range m.internalToExternal {
		if _, err := fmt.Fprintf(w, "%s %d\n", ext, i); err != nil {
			return fmt.Errorf("idmap: write line: %w", err)
		}
	}
	return w.Flush()
}

// Load reads an id map previously written by Save.
func Load(path string) (*IDMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("idmap: open %s: %w", path, err)
	}
	defer f.Close()

	m := &IDMap{externalToInternal: make(map[string]uint32)}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.LastIndexByte(line, ' ')
		if idx < 0 {
			continue // CorruptRecord: malformed line, skip
		}
		ext := line[:idx]
		internal, err := strconv.ParseUint(line[idx+1:], 10, 32)
		if err != nil {
			continue
		}
		for uint32(len(m.internalToExternal)) <= uint32(internal) {
			m.internalToExternal = append(m.internalToExternal, "")
		}
		m.internalToExternal[internal] = ext
		m.externalToInternal[ext] = uint32(internal)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("idmap: scan: %w", err)
	}
	return m, nil
}
