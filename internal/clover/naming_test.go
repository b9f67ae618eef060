package clover

import "testing"

func TestPackageName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a/b/", "a.b"},
		{`a\b\`, "a.b"},
		{"a/b", "a.b"},
		{"src/", "src"},
		{"a/b//", "a.b."},
		{"", ""},
	}
	for _, tt := range tests {
		if got := PackageName(tt.path); got != tt.want {
			t.Errorf("PackageName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestClassName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a/b/c.js", "c.js"},
		{`a\b\c.js`, "c.js"},
		{`a/b\c.go`, "c.go"},
		{"main.go", "main.go"},
		{"dir/", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ClassName(tt.path); got != tt.want {
			t.Errorf("ClassName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
