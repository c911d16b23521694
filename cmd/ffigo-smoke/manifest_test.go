package main

import (
	"os"
	"path/filepath"
	"testing"
	"unsafe"
)

func TestLoadManifest(t *testing.T) {
	m, err := LoadManifest(filepath.Join("testdata", "smoke.yaml"))
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}

	if m.Library != "" {
		t.Errorf("Library = %q, want empty", m.Library)
	}
	if len(m.Calls) != 3 {
		t.Fatalf("got %d calls, want 3", len(m.Calls))
	}
	if m.Calls[0].Symbol != "strlen" || m.Calls[0].Expect != "5" {
		t.Errorf("unexpected first call: %+v", m.Calls[0])
	}
	if m.Calls[2].Return != "sint32" {
		t.Errorf("getpid return = %q, want sint32", m.Calls[2].Return)
	}
}

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "m.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadManifestRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"missing symbol": "calls:\n  - return: uint64\n",
		"unknown type":   "calls:\n  - symbol: f\n    return: quaternion\n",
		"value mismatch": "calls:\n  - symbol: f\n    args: [sint32]\n",
		"fixed range":    "calls:\n  - symbol: f\n    fixed: 2\n    args: [sint32]\n    values: [\"1\"]\n",
	}

	for name, body := range cases {
		if _, err := LoadManifest(writeManifest(t, body)); err == nil {
			t.Errorf("%s: LoadManifest succeeded, want error", name)
		}
	}
}

func TestBuildSlot(t *testing.T) {
	slot, err := buildSlot("sint32", "-7")
	if err != nil {
		t.Fatalf("buildSlot sint32 failed: %v", err)
	}
	if got := *(*int32)(slot.ptr); got != -7 {
		t.Errorf("sint32 slot = %d, want -7", got)
	}

	slot, err = buildSlot("uint64", "0xff")
	if err != nil {
		t.Fatalf("buildSlot uint64 failed: %v", err)
	}
	if got := *(*uint64)(slot.ptr); got != 255 {
		t.Errorf("uint64 slot = %d, want 255", got)
	}

	slot, err = buildSlot("string", "hi")
	if err != nil {
		t.Fatalf("buildSlot string failed: %v", err)
	}
	p := *(*unsafe.Pointer)(slot.ptr)
	bytes := (*[3]byte)(p)
	if string(bytes[:2]) != "hi" || bytes[2] != 0 {
		t.Errorf("string slot payload = %v, want \"hi\\x00\"", bytes)
	}

	if _, err := buildSlot("sint32", "notanumber"); err == nil {
		t.Error("buildSlot accepted a non-numeric literal")
	}
}
