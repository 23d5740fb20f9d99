package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetlens/sheetlens/pkg/analysis"
)

const (
	januaryFixture  = "../../testdata/analysis_january.json"
	februaryFixture = "../../testdata/analysis_february.json"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAnalyzeCmdFlags(t *testing.T) {
	f := newAnalyzeCmd().Flags()

	outputFmt, _ := f.GetString("output")
	assert.Equal(t, "text", outputFmt)

	for _, flag := range []string{"service-url", "timeout", "save", "no-save", "output"} {
		assert.NotNil(t, f.Lookup(flag), "missing flag: %s", flag)
	}
}

func TestCompareAndScoreCmdFlags(t *testing.T) {
	outputFmt, _ := newCompareCmd().Flags().GetString("output")
	assert.Equal(t, "text", outputFmt)
	outputFmt, _ = newScoreCmd().Flags().GetString("output")
	assert.Equal(t, "text", outputFmt)
}

func TestCompareCmd_Text(t *testing.T) {
	out, err := execute(t, "compare", januaryFixture, februaryFixture)
	require.NoError(t, err)

	assert.Contains(t, out, "Comparison: analysis_january → analysis_february")
	assert.Contains(t, out, "Rows: 100 → 120 (+20)")
	assert.Contains(t, out, "+200.00 (+20.00%)")
	assert.Contains(t, out, "-20.00 (-25.00%)")
	assert.NotContains(t, out, "Marge")
	assert.Contains(t, out, "Verdict: stable (1 improved, 1 degraded)")
}

func TestCompareCmd_JSON(t *testing.T) {
	out, err := execute(t, "compare", "--output", "json", januaryFixture, februaryFixture)
	require.NoError(t, err)

	var got struct {
		KPIsComparison []analysis.KPIComparison `json:"kpis_comparison"`
		Verdict        string                   `json:"verdict"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.KPIsComparison, 2)
	assert.Equal(t, "Ventes", got.KPIsComparison[0].Column)
	assert.Equal(t, "stable", got.Verdict)
}

func TestCompareCmd_Errors(t *testing.T) {
	_, err := execute(t, "compare", januaryFixture)
	assert.Error(t, err)

	_, err = execute(t, "compare", januaryFixture, "does-not-exist.json")
	assert.Error(t, err)

	_, err = execute(t, "compare", "--output", "xml", januaryFixture, februaryFixture)
	assert.Error(t, err)
}

func TestScoreCmd(t *testing.T) {
	out, err := execute(t, "score", februaryFixture)
	require.NoError(t, err)

	// 20 missing (capped 30) + 2 alerts (20) + 1 anomaly (5)
	assert.Contains(t, out, "Score 45/100 (low)")
	assert.Contains(t, out, "Insights (retail), health 72/100:")
}

func TestAnalyzeCmd(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := r.FormFile("file"); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"success","data":{"summary":{"total_rows":7,"missing_values":1},"kpis":[],"alerts":[],"anomalies":[]}}`)
	}))
	defer srv.Close()

	workbook := filepath.Join(t.TempDir(), "mars.xlsx")
	require.NoError(t, os.WriteFile(workbook, []byte("PK"), 0o644))

	out, err := execute(t, "analyze", "--service-url", srv.URL, workbook)
	require.NoError(t, err)
	assert.Contains(t, out, "Score 98/100 (excellent)")

	saved := filepath.Join(home, ".cache", "sheetlens", "analyses", "mars.json")
	res, err := analysis.Load(saved)
	require.NoError(t, err)
	assert.Equal(t, 7, res.TotalRows())

	// Saved analyses can be referenced by name.
	out, err = execute(t, "score", "mars")
	require.NoError(t, err)
	assert.Contains(t, out, "Score 98/100 (excellent)")
}

func TestAnalyzeCmd_ServiceError(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"error","message":"Excel file format cannot be determined"}`)
	}))
	defer srv.Close()

	workbook := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(workbook, []byte("nope"), 0o644))

	_, err := execute(t, "analyze", "--no-save", "--service-url", srv.URL, workbook)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Excel file format cannot be determined")
}

func TestFirstNonEmpty(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"a", "b", "c"}, "a"},
		{[]string{"", "b", "c"}, "b"},
		{[]string{"", "", "c"}, "c"},
		{[]string{"", "", ""}, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, firstNonEmpty(tt.args...), "firstNonEmpty(%v)", tt.args)
	}
}
