// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/gpgpu"
)

func TestParseDecl(t *testing.T) {
	tests := []struct {
		in      string
		want    gpgpu.Declaration
		wantErr bool
	}{
		{"a:matrix", gpgpu.Declaration{Name: "a", Kind: gpgpu.KindMatrix}, false},
		{"gain:float", gpgpu.Declaration{Name: "gain", Kind: gpgpu.KindFloat}, false},
		{"offset:ivec2", gpgpu.Declaration{Name: "offset", Kind: gpgpu.KindIVec2}, false},
		{"nokind", gpgpu.Declaration{}, true},
		{"Bad:float", gpgpu.Declaration{}, true},
		{"a:double", gpgpu.Declaration{}, true},
	}
	for _, tt := range tests {
		got, err := parseDecl(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseDecl(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseDecl(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}

	if _, err := parseDecl("Bad:float"); !errors.Is(err, gpgpu.ErrInvalidName) {
		t.Errorf("parseDecl(Bad:float) error = %v, want ErrInvalidName", err)
	}
}

func TestDeclList(t *testing.T) {
	var l declList
	if err := l.Set("a:matrix"); err != nil {
		t.Fatal(err)
	}
	if err := l.Set("k:vec3"); err != nil {
		t.Fatal(err)
	}
	if got := l.String(); got != "a:matrix,k:vec3" {
		t.Errorf("String() = %q", got)
	}
}

func writeBody(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "body.wgsl")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCompile(t *testing.T) {
	path := writeBody(t, "return aAt(uv) * gain;\n")
	decls := []gpgpu.Declaration{
		{Name: "a", Kind: gpgpu.KindMatrix},
		{Name: "gain", Kind: gpgpu.KindFloat},
	}

	wgsl, err := compile(path, decls, "wgsl")
	if err != nil {
		t.Fatalf("wgsl: %v", err)
	}
	if !strings.Contains(string(wgsl), "var<uniform> gain: f32;") {
		t.Errorf("wgsl output lacks the gain uniform:\n%s", wgsl)
	}

	spv, err := compile(path, decls, "spirv")
	if err != nil {
		t.Fatalf("spirv: %v", err)
	}
	if len(spv) < 4 || binary.LittleEndian.Uint32(spv) != 0x07230203 {
		t.Errorf("spirv output does not start with the magic number")
	}

	if _, err := compile(path, decls, "dxil"); err == nil {
		t.Error("unknown target accepted")
	}
	if _, err := compile(path, nil, "wgsl"); err == nil {
		t.Error("undeclared inputs accepted")
	}
	if _, err := compile(filepath.Join(t.TempDir(), "missing.wgsl"), decls, "wgsl"); err == nil {
		t.Error("missing file accepted")
	}
}
