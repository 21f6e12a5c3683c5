package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

// writeTree creates the given slash paths below a temp dir; a trailing "/"
// makes a directory.
func writeTree(t *testing.T, paths ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if strings.HasSuffix(p, "/") {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, nil, 0o644))
	}
	return root
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func lines(s string) []string {
	return strings.Fields(s)
}

var sourceTree = []string{
	"src/a.ts",
	"src/b.test.ts",
	"src/sub/c.ts",
	"lib/d.ts",
	"docs/",
}

func TestRoot_Patterns(t *testing.T) {
	dir := writeTree(t, sourceTree...)

	out, _, err := execute(t, "--cwd", dir, "src/**/*.ts", "!**/*.test.ts")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"src/a.ts", "src/sub/c.ts"}, lines(out))
}

func TestRoot_Sync(t *testing.T) {
	dir := writeTree(t, sourceTree...)

	async, _, err := execute(t, "-C", dir, "**/*.ts")
	require.NoError(t, err)
	sync, _, err := execute(t, "-C", dir, "--sync", "**/*.ts")
	require.NoError(t, err)

	assert.Equal(t, async, sync)
	assert.Len(t, lines(sync), 4)
}

func TestRoot_Count(t *testing.T) {
	dir := writeTree(t, sourceTree...)

	out, _, err := execute(t, "-C", dir, "--count", "src/**/*.ts")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
}

func TestRoot_Ignore(t *testing.T) {
	dir := writeTree(t, sourceTree...)

	out, _, err := execute(t, "-C", dir, "-i", "**/sub/**", "--ignore", "lib/**", "**/*.ts")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"src/a.ts", "src/b.test.ts"}, lines(out))
}

func TestRoot_IgnoreFile(t *testing.T) {
	dir := writeTree(t, sourceTree...)
	ignoreFile := filepath.Join(t.TempDir(), "patterns")
	require.NoError(t, os.WriteFile(ignoreFile, []byte("# tests\r\n**/*.test.ts\r\n\r\nlib/**\r\n"), 0o644))

	out, _, err := execute(t, "-C", dir, "--ignore-file", ignoreFile, "**/*.ts")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"src/a.ts", "src/sub/c.ts"}, lines(out))
}

func TestRoot_IgnoreFileMissing(t *testing.T) {
	dir := writeTree(t, sourceTree...)

	_, _, err := execute(t, "-C", dir, "--ignore-file", filepath.Join(dir, "nope"), "**/*.ts")
	require.Error(t, err)
}

func TestRoot_Deep(t *testing.T) {
	dir := writeTree(t, sourceTree...)

	out, _, err := execute(t, "-C", dir, "--deep", "0", "src/**/*.ts")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"src/a.ts", "src/b.test.ts"}, lines(out))

	out, _, err = execute(t, "-C", dir, "--deep=-1", "src/**/*.ts")
	require.NoError(t, err)
	assert.Len(t, lines(out), 3)
}

func TestRoot_OnlyDirs(t *testing.T) {
	dir := writeTree(t, sourceTree...)

	out, _, err := execute(t, "-C", dir, "-d", "*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"docs", "lib", "src"}, lines(out))
}

func TestRoot_OnlyDirsAndFilesConflict(t *testing.T) {
	dir := writeTree(t, sourceTree...)

	_, _, err := execute(t, "-C", dir, "--only-dirs", "--only-files", "*")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestRoot_Absolute(t *testing.T) {
	dir := writeTree(t, sourceTree...)

	out, _, err := execute(t, "-C", dir, "--absolute", "lib/*.ts")
	require.NoError(t, err)

	got := lines(out)
	require.Len(t, got, 1)
	assert.True(t, filepath.IsAbs(got[0]), "%q is not absolute", got[0])
	assert.Equal(t, "d.ts", filepath.Base(got[0]))
}

func TestRoot_Config(t *testing.T) {
	dir := writeTree(t, ".env", "a.txt", "sub/")
	cfg := filepath.Join(t.TempDir(), "fglob.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("dot: true\nonly_files: true\ncwd: "+dir+"\n"), 0o644))

	out, _, err := execute(t, "--config", cfg, "*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{".env", "a.txt"}, lines(out))

	// Flags set on the command line win over the file.
	out, _, err = execute(t, "--config", cfg, "--dot=false", "*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt"}, lines(out))
}

func TestRoot_ConfigUnknownKey(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "fglob.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("dots: true\n"), 0o644))

	_, _, err := execute(t, "--config", cfg, "*")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestRoot_SyntaxError(t *testing.T) {
	dir := writeTree(t, sourceTree...)

	_, _, err := execute(t, "-C", dir, "src/[a-z")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated character class")
}

func TestRoot_StrictMissingPath(t *testing.T) {
	dir := writeTree(t, sourceTree...)

	out, _, err := execute(t, "-C", dir, "missing.txt")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, _, err = execute(t, "-C", dir, "--strict", "missing.txt")
	require.Error(t, err)
}

func TestRoot_DebugLogging(t *testing.T) {
	dir := writeTree(t, sourceTree...)

	_, stderr, err := execute(t, "-C", dir, "--log-level", "debug", "-i", "lib/**", "**/*.ts")
	require.NoError(t, err)
	assert.Contains(t, stderr, "level=debug")
	assert.Contains(t, stderr, "pruning ignored directory")

	_, stderr, err = execute(t, "-C", dir, "-i", "lib/**", "**/*.ts")
	require.NoError(t, err)
	assert.Empty(t, stderr)
}

func TestRoot_InvalidLogLevel(t *testing.T) {
	_, _, err := execute(t, "--log-level", "chatty", "*")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")
}

func TestRoot_RequiresPattern(t *testing.T) {
	_, _, err := execute(t)
	require.Error(t, err)
}

func TestEscapeCommand(t *testing.T) {
	out, _, err := execute(t, "escape", "src/[special]/file.ts", "!important", "plain.txt")
	require.NoError(t, err)
	assert.Equal(t, "src/\\[special\\]/file.ts\n\\!important\nplain.txt\n", out)
}

func TestDynamicCommand(t *testing.T) {
	out, _, err := execute(t, "dynamic", "a/b.txt", "src/**/*.ts", `a/\*.txt`)
	require.NoError(t, err)
	assert.Equal(t, "a/b.txt\tfalse\nsrc/**/*.ts\ttrue\na/\\*.txt\tfalse\n", out)
}
