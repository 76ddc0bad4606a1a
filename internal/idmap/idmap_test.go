package idmap

import (
	"path/filepath"
	"testing"
)

func TestBuild_AssignsDenseIdsInLexicographicOrder(t *testing.T) {
	m := Build([]string{"2103.001", "1905.002", "2001.123"})
	want := []string{"1905.002", "2001.123", "2103.001"}
	for i, ext := range want {
		id, ok := m.Internal(ext)
		if !ok || id != uint32(i) {
			t.Errorf("Internal(%q) = (%d, %v), want (%d, true)", ext, id, ok, i)
		}
	}
}

func TestBuild_ExternalIsInverseOfInternal(t *testing.T) {
	m := Build([]string{"b", "a", "c"})
	for i := 0; i < m.Len(); i++ {
		ext, ok := m.External(uint32(i))
		if !ok {
			t.Fatalf("External(%d) not found", i)
		}
		internal, ok := m.Internal(ext)
		if !ok || internal != uint32(i) {
			t.Errorf("round trip failed for %d -> %q -> %d", i, ext, internal)
		}
	}
}

func TestIDMap_SaveLoad_RoundTrip(t *testing.T) {
	m := Build([]string{"z", "a", "m"})
	path := filepath.Join(t.TempDir(), "id_map.txt")
	if err := m.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != m.Len() {
		t.Fatalf("loaded Len() = %d, want %d", loaded.Len(), m.Len())
	}
	for i := 0; i < m.Len(); i++ {
		want, _ := m.External(uint32(i))
		got, ok := loaded.External(uint32(i))
		if !ok || got != want {
			t.Errorf("External(%d) = %q, want %q", i, got, want)
		}
	}
}

func TestIDMap_Internal_MissingExternal(t *testing.T) {
	m := Build([]string{"a"})
	if _, ok := m.Internal("missing"); ok {
		t.Errorf("Internal found an id that was never built")
	}
}
