package runtime

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/require"
)

// goldenTest runs testdata/<name>.scr and compares its output to <name>.expected.
func goldenTest(t *testing.T, name string) {
	t.Helper()

	srcPath := filepath.Join("..", "..", "testdata", name+".scr")
	expectedPath := filepath.Join("..", "..", "testdata", name+".expected")

	source, err := os.ReadFile(srcPath)
	require.NoError(t, err)
	expected, err := os.ReadFile(expectedPath)
	require.NoError(t, err)

	_, got, err := runSource(t, string(source), Config{})
	require.NoError(t, err)

	want := strings.TrimRight(string(expected), "\n")
	got = strings.TrimRight(got, "\n")
	if got != want {
		dmp := diffmatchpatch.New()
		a, b, lines := dmp.DiffLinesToChars(want, got)
		diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)
		t.Errorf("output mismatch for %s (-want +got):\n%s", name, dmp.DiffPrettyText(diffs))
	}
}

func TestGoldenScenarios(t *testing.T) {
	goldenTest(t, "scenarios")
}

func TestGoldenLoops(t *testing.T) {
	goldenTest(t, "loops")
}

func TestGoldenClasses(t *testing.T) {
	goldenTest(t, "classes")
}

func TestGoldenLifetimes(t *testing.T) {
	goldenTest(t, "lifetimes")
}
