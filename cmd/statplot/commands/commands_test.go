package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/statplot/cmd/statplot/commands"
	"github.com/Sumatoshi-tech/statplot/pkg/batch"
	"github.com/Sumatoshi-tech/statplot/pkg/version"
)

const peopleCSV = `age,income,spend,dept,label,score
20,1500,45,sales,0,0.10
25,1700,55,ops,0,0.35
30,1950,66,sales,1,0.62
35,2100,74,hr,0,0.20
40,2400,86,sales,1,0.91
45,2600,95,ops,1,0.55
50,2900,104,hr,0,0.52
55,3050,116,sales,1,0.77
`

// workspace writes the sample table and an empty config file.
func workspace(t *testing.T) (dir, data, cfg string) {
	t.Helper()

	dir = t.TempDir()
	data = filepath.Join(dir, "people.csv")
	cfg = filepath.Join(dir, "statplot.yaml")

	require.NoError(t, os.WriteFile(data, []byte(peopleCSV), 0o600))
	require.NoError(t, os.WriteFile(cfg, []byte("logging:\n  level: error\n"), 0o600))

	return dir, data, cfg
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	root := commands.NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())

	return stdout.String(), err
}

func TestPlotCommandsWriteFiles(t *testing.T) {
	t.Parallel()

	dir, data, cfg := workspace(t)

	tests := map[string][]string{
		"hist.svg":     {"hist", data, "age", "income", "--ticks", "20,40,60", "--ticks", ""},
		"kde.html":     {"kde", data, "age", "spend", "--labels", "Age,Spend", "--shade=false"},
		"box.png":      {"box", data, "age", "spend", "--orientation", "v", "--cols", "2"},
		"violin.svg":   {"violin", data, "income"},
		"regress.pdf":  {"regress", data, "age", "--y", "income", "--ci", "95", "--marker", "o"},
		"count.svg":    {"count", data, "dept"},
		"bar.svg":      {"bar", data, "dept", "--y", "income", "--ci", "sd"},
		"heatmap.html": {"heatmap", data, "age", "income", "spend", "--vmin", "-0.5", "--colormap", "coolwarm"},
		"residual.jpg": {"residual", data, "spend", "--x", "age"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out := filepath.Join(dir, name)

			stdout, err := execute(t, append(args, "--config", cfg, "--output", out)...)
			require.NoError(t, err)

			assert.Contains(t, stdout, "wrote "+out)

			info, statErr := os.Stat(out)
			require.NoError(t, statErr)
			assert.Positive(t, info.Size())
		})
	}
}

func TestHeatmapDefaultColormapHTML(t *testing.T) {
	t.Parallel()

	dir, data, cfg := workspace(t)
	out := filepath.Join(dir, "heat.html")

	stdout, err := execute(t, "heatmap", data, "age", "income", "spend", "--config", cfg, "--output", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote "+out)

	page, readErr := os.ReadFile(out)
	require.NoError(t, readErr)
	assert.Contains(t, string(page), `"visualMap"`)
}

func TestROCCommandPrintsAUROC(t *testing.T) {
	t.Parallel()

	dir, data, cfg := workspace(t)
	out := filepath.Join(dir, "roc.svg")

	stdout, err := execute(t, "roc", data, "--target", "label", "--score", "score",
		"--title", "Model", "--config", cfg, "-o", out)
	require.NoError(t, err)

	assert.Contains(t, stdout, "AUROC 0.875")
	assert.FileExists(t, out)
}

func TestPlotCommandErrors(t *testing.T) {
	t.Parallel()

	_, data, cfg := workspace(t)

	tests := map[string][]string{
		"kde arity":      {"kde", data, "age"},
		"regress no y":   {"regress", data, "age"},
		"bad ticks":      {"hist", data, "age", "--ticks", "a,b"},
		"bad format":     {"hist", data, "age", "--format", "gif"},
		"bad theme":      {"hist", data, "age", "--theme", "sepia"},
		"missing column": {"hist", data, "nope"},
		"missing data":   {"hist", filepath.Join(filepath.Dir(data), "absent.csv"), "age"},
		"grid too small": {"box", data, "age", "spend", "--rows", "1", "--cols", "1"},
		"roc no score":   {"roc", data, "--target", "label"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := execute(t, append(args, "--config", cfg, "-o", filepath.Join(t.TempDir(), "x.svg"))...)
			require.Error(t, err)
		})
	}
}

func TestBatchCommand(t *testing.T) {
	t.Parallel()

	dir, _, cfg := workspace(t)
	job := filepath.Join(dir, "job.yaml")

	require.NoError(t, os.WriteFile(job, []byte(`
data: people.csv
output_dir: figures
format: svg
plots:
  - kind: hist
    name: ages
    columns: [age]
  - kind: roc
    target: label
    score: score
  - kind: count
    name: broken
    columns: [missing]
`), 0o600))

	stdout, err := execute(t, "batch", job, "--config", cfg)
	require.ErrorIs(t, err, batch.ErrPlotsFailed)

	assert.FileExists(t, filepath.Join(dir, "figures", "ages.svg"))
	assert.FileExists(t, filepath.Join(dir, "figures", "roc-2.svg"))
	assert.NoFileExists(t, filepath.Join(dir, "figures", "broken.svg"))
	assert.Contains(t, stdout, "AUROC 0.875")
	assert.Contains(t, stdout, "1 failed")
}

func TestBatchCommandOverridesOutput(t *testing.T) {
	t.Parallel()

	dir, _, cfg := workspace(t)
	job := filepath.Join(dir, "job.yaml")
	outDir := filepath.Join(t.TempDir(), "elsewhere")

	require.NoError(t, os.WriteFile(job, []byte("data: people.csv\nplots:\n  - kind: box\n    name: b\n    columns: [age]\n"), 0o600))

	_, err := execute(t, "batch", job, "--config", cfg, "--output", outDir, "--format", "png")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "b.png"))
}

func TestBatchSchema(t *testing.T) {
	t.Parallel()

	stdout, err := execute(t, "batch", "--schema")
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &schema))
	assert.Equal(t, "statplot batch job", schema["title"])
}

func TestDescribeCommand(t *testing.T) {
	t.Parallel()

	_, data, _ := workspace(t)

	stdout, err := execute(t, "describe", data, "--corr", "--decimals", "2")
	require.NoError(t, err)

	assert.Contains(t, stdout, "8 rows")
	assert.Contains(t, stdout, "dept")
	assert.Contains(t, stdout, "categorical")
	assert.Contains(t, stdout, "37.50")
	assert.Contains(t, stdout, "Pearson correlation")

	stdout, err = execute(t, "describe", data, "--json")
	require.NoError(t, err)

	var desc batch.Description
	require.NoError(t, json.Unmarshal([]byte(stdout), &desc))
	assert.Equal(t, 8, desc.Rows)
	assert.Len(t, desc.Columns, 6)
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	stdout, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version.String(), strings.TrimSpace(stdout))
}

func TestCommandTree(t *testing.T) {
	t.Parallel()

	root := commands.NewRootCommand()

	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range append(batch.Kinds(), "batch", "describe", "serve", "mcp", "version") {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"config", "verbose", "theme", "format", "output"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}
