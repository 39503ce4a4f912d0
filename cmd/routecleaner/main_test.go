package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routecleaner/pkg/contracts"
)

const deliveriesCSV = "name,addr,route,note\n" +
	"b,B1,Y,\n" +
	"a,A1,X,\n" +
	"a,A1,X,call first\n" +
	"z,Z1,Z,\n"

const testConfigYAML = `logging:
  level: debug
pipeline:
  identity_key: [addr, route]
  priority_column: note
  sort_keys: [route, name]
  category_column: route
  category_order: [X, Y]
  separator_size: 1
output:
  prefix: ROUTES
telemetry:
  metric_exporter: none
`

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// workspace writes the config and the given files into a temp dir and
// returns the dir and the config path
func workspace(t *testing.T, inputs map[string]string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "routecleaner.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(testConfigYAML), 0644))

	inDir := filepath.Join(dir, "in")
	require.NoError(t, os.MkdirAll(inDir, 0755))
	for name, content := range inputs {
		require.NoError(t, os.WriteFile(filepath.Join(inDir, name), []byte(content), 0644))
	}
	return dir, cfgPath
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestVersion(t *testing.T) {
	res := runCLI(t, "version")
	assert.Equal(t, exitOK, res.code)
	assert.Equal(t, contracts.GetVersionString()+"\n", res.stdout)

	res = runCLI(t, "version", "--json")
	require.Equal(t, exitOK, res.code)
	var info contracts.VersionInfo
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &info))
	assert.Equal(t, contracts.Version, info.Version)

	res = runCLI(t, "--version")
	assert.Equal(t, exitOK, res.code)
	assert.Contains(t, res.stdout, contracts.Version)
}

func TestClean(t *testing.T) {
	dir, cfgPath := workspace(t, map[string]string{"deliveries.csv": deliveriesCSV})
	in := filepath.Join(dir, "in", "deliveries.csv")
	out := filepath.Join(dir, "routes.csv")

	res := runCLI(t, "clean", "--config", cfgPath, "-o", out, in)
	require.Equal(t, exitOK, res.code, res.stderr)

	assert.Equal(t, "\ufeffname,addr,route,note\n"+
		"a,A1,X,call first\n"+
		",,,\n"+
		"b,B1,Y,\n"+
		",,,\n", readFile(t, out))
	assert.Equal(t, out+": 4 rows in, 1 duplicates removed, 1 uncategorized dropped, 2 groups, 4 rows written\n", res.stdout)
	assert.Contains(t, res.stderr, "Pipeline run completed")
}

func TestClean_Flags(t *testing.T) {
	dir, cfgPath := workspace(t, map[string]string{"deliveries.csv": deliveriesCSV})
	in := filepath.Join(dir, "in", "deliveries.csv")

	t.Run("rows and format", func(t *testing.T) {
		out := filepath.Join(dir, "no-separators.out")
		res := runCLI(t, "clean", "-c", cfgPath, "--rows", "0", "--format", "csv", "-o", out, in)
		require.Equal(t, exitOK, res.code, res.stderr)
		assert.Equal(t, "\ufeffname,addr,route,note\na,A1,X,call first\nb,B1,Y,\n", readFile(t, out))
	})

	t.Run("summary report", func(t *testing.T) {
		out := filepath.Join(dir, "routes.xlsx")
		report := filepath.Join(dir, "routes.json")
		res := runCLI(t, "clean", "-c", cfgPath, "-o", out, "--summary", report, in)
		require.Equal(t, exitOK, res.code, res.stderr)

		assert.FileExists(t, out)
		assert.Contains(t, res.stdout, "summary: "+report)

		var doc struct {
			Routes []map[string]interface{} `json:"routes"`
			Count  int                      `json:"count"`
		}
		require.NoError(t, json.Unmarshal([]byte(readFile(t, report)), &doc))
		assert.Equal(t, 2, doc.Count)
		require.Len(t, doc.Routes, 2)
		assert.Equal(t, "X", doc.Routes[0]["route"])
	})

	t.Run("generated name next to input", func(t *testing.T) {
		res := runCLI(t, "clean", "-c", cfgPath, in)
		require.Equal(t, exitOK, res.code, res.stderr)

		matches, err := filepath.Glob(filepath.Join(dir, "in", "ROUTES *.xlsx"))
		require.NoError(t, err)
		assert.Len(t, matches, 1)
	})
}

func TestClean_ExitCodes(t *testing.T) {
	dir, cfgPath := workspace(t, map[string]string{
		"deliveries.csv": deliveriesCSV,
		"no-route.csv":   "name,addr,note\na,A1,\n",
	})
	in := filepath.Join(dir, "in", "deliveries.csv")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no input", []string{"clean", "-c", cfgPath}, exitValidation},
		{"unknown flag", []string{"clean", "-c", cfgPath, "--colour", in}, exitValidation},
		{"bad format", []string{"clean", "-c", cfgPath, "--format", "ods", in}, exitValidation},
		{"negative rows", []string{"clean", "-c", cfgPath, "--rows", "-1", in}, exitValidation},
		{"bad log level", []string{"clean", "-c", cfgPath, "--log-level", "loud", in}, exitValidation},
		{"missing column", []string{"clean", "-c", cfgPath, filepath.Join(dir, "in", "no-route.csv")}, exitSchema},
		{"missing input", []string{"clean", "-c", cfgPath, filepath.Join(dir, "nope.csv")}, exitIO},
		{"missing config", []string{"clean", "-c", filepath.Join(dir, "nope.yaml"), in}, exitIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, tt.args...)
			assert.Equal(t, tt.want, res.code, res.stderr)
			assert.Contains(t, res.stderr, "Error:")
		})
	}
}

func TestBatch(t *testing.T) {
	dir, cfgPath := workspace(t, map[string]string{
		"monday.csv":    deliveriesCSV,
		"tuesday.csv":   deliveriesCSV,
		"~$monday.xlsx": "lock",
		"notes.txt":     "ignored",
	})
	outDir := filepath.Join(dir, "out")

	res := runCLI(t, "batch", "-c", cfgPath, "--format", "csv", "--summary", "json", "-o", outDir, filepath.Join(dir, "in"))
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, 2, strings.Count(res.stdout, "rows written"))

	sheets, err := filepath.Glob(filepath.Join(outDir, "ROUTES * *.csv"))
	require.NoError(t, err)
	assert.Len(t, sheets, 2)

	reports, err := filepath.Glob(filepath.Join(outDir, "*.summary.json"))
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

func TestBatch_Failures(t *testing.T) {
	t.Run("one file fails", func(t *testing.T) {
		dir, cfgPath := workspace(t, map[string]string{
			"good.csv":   deliveriesCSV,
			"broken.csv": "name,addr,note\na,A1,\n",
		})

		res := runCLI(t, "batch", "-c", cfgPath, filepath.Join(dir, "in"))
		assert.Equal(t, exitSchema, res.code, res.stderr)
		assert.Equal(t, 1, strings.Count(res.stdout, "rows written"))
		assert.Contains(t, res.stderr, "broken.csv")
	})

	t.Run("empty directory", func(t *testing.T) {
		dir, cfgPath := workspace(t, nil)

		res := runCLI(t, "batch", "-c", cfgPath, filepath.Join(dir, "in"))
		assert.Equal(t, exitFailure, res.code)
		assert.Contains(t, res.stderr, "no spreadsheets")
	})

	t.Run("bad summary kind", func(t *testing.T) {
		dir, cfgPath := workspace(t, map[string]string{"good.csv": deliveriesCSV})

		res := runCLI(t, "batch", "-c", cfgPath, "--summary", "xml", filepath.Join(dir, "in"))
		assert.Equal(t, exitValidation, res.code)
	})
}
