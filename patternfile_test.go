package glob

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestExpandTilde(t *testing.T) {
	t.Run("non-tilde passthrough", func(t *testing.T) {
		path, err := expandTilde("/absolute/path")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if path != "/absolute/path" {
			t.Errorf("got %q, want %q", path, "/absolute/path")
		}
	})

	t.Run("relative passthrough", func(t *testing.T) {
		path, err := expandTilde("relative/path")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if path != "relative/path" {
			t.Errorf("got %q, want %q", path, "relative/path")
		}
	})

	t.Run("tilde alone", func(t *testing.T) {
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skipf("cannot get home dir: %v", err)
		}
		path, err := expandTilde("~")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if path != home {
			t.Errorf("got %q, want %q", path, home)
		}
	})

	t.Run("tilde with path", func(t *testing.T) {
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skipf("cannot get home dir: %v", err)
		}
		path, err := expandTilde("~/some/path")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := home + "/some/path"
		if path != want {
			t.Errorf("got %q, want %q", path, want)
		}
	})

	t.Run("unknown user error", func(t *testing.T) {
		_, err := expandTilde("~nonexistentuserxyz123/path")
		if err == nil {
			t.Fatal("expected error for unknown user, got nil")
		}
	})
}

func TestParsePatternFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"empty", "", nil},
		{"comments and blanks", "# header\n\n*.go\n  \n# more\n", []string{"*.go"}},
		{"keeps order and negation", "src/**\n!src/gen/**\n*.md\n", []string{"src/**", "!src/gen/**", "*.md"}},
		{"trailing whitespace", "*.go   \n*.ts\t\n", []string{"*.go", "*.ts"}},
		{"escaped trailing space", "name\\ \n", []string{"name "}},
		{"escaped comment marker", "\\#file\n", []string{"#file"}},
		{"no final newline", "a\nb", []string{"a", "b"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePatternFile([]byte(tt.content))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsePatternFile(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestReadPatternFile_Fixtures(t *testing.T) {
	tests := []struct {
		file string
		want []string
	}{
		{
			"crlf.patterns",
			[]string{"src/**/*.ts", "!**/*.test.ts", "build/", "docs/**/*.md"},
		},
		{
			"with-bom.patterns",
			[]string{"*.log", "!**/node_modules/**", "日本語.txt", "données/*"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			got, err := ReadPatternFile(filepath.Join("testdata", tt.file))
			if err != nil {
				t.Fatalf("ReadPatternFile: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadPatternFile_AllFixturesCompile(t *testing.T) {
	files := []string{
		"crlf.patterns",
		"with-bom.patterns",
		"pathological.patterns",
		"realistic/large.patterns",
	}

	for _, name := range files {
		patterns, err := ReadPatternFile(filepath.Join("testdata", name))
		if err != nil {
			t.Fatalf("ReadPatternFile(%s): %v", name, err)
		}
		if len(patterns) == 0 {
			t.Errorf("%s: no patterns", name)
		}
		for _, raw := range patterns {
			if _, err := Compile(raw); err != nil {
				t.Errorf("%s: %v", name, err)
			}
		}
	}
}

func TestReadPatternFile_Missing(t *testing.T) {
	_, err := ReadPatternFile(filepath.Join(t.TempDir(), "nope.patterns"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error %v should wrap a not-exist error", err)
	}
}

func TestReadPatternFile_Tilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	if err := os.WriteFile(filepath.Join(home, "patterns"), []byte("*.go\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadPatternFile("~/patterns")
	if err != nil {
		t.Fatalf("ReadPatternFile: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"*.go"}) {
		t.Errorf("got %q", got)
	}
}
