package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/polizas-reportes/internal/application/dto"
)

const entriesDump = `{"data":[
  {"id":"1","policyIssueDate":"2025-11-03","netPremium":"1,000","netRevenue":"120","insuranceCompany":"ACKO"},
  {"id":"2","policyIssueDate":"2025-11-20","netPremium":"3000","netRevenue":"300","insuranceCompany":"HDFC"},
  {"id":"3","policyIssueDate":"2025-10-15","netPremium":"500","insuranceCompany":"ACKO"}
]}`

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeDump(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "entries.json")
	require.NoError(t, os.WriteFile(path, []byte(entriesDump), 0o600))
	return path
}

func TestOverview_DesdeArchivoJSON(t *testing.T) {
	out, err := runCLI(t, "overview", "--file", writeDump(t), "--start", "2025-11-01", "--end", "2025-11-30")
	require.NoError(t, err)

	var ov dto.OverviewDTO
	require.NoError(t, json.Unmarshal([]byte(out), &ov))
	assert.Equal(t, 2, ov.Totals.TotalPolicies)
	assert.Equal(t, "420", ov.Totals.TotalRevenue.String())
	assert.Equal(t, "all", ov.Scope)
}

func TestOverview_SalidaYAMLSoloTimeline(t *testing.T) {
	out, err := runCLI(t, "overview", "--file", writeDump(t), "--only", "timeline", "-o", "yaml")
	require.NoError(t, err)

	var tl map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &tl))
	assert.Equal(t, "month", tl["granularity"])
	buckets, ok := tl["buckets"].([]any)
	require.True(t, ok)
	assert.Len(t, buckets, 2)
}

func TestOverview_Errores(t *testing.T) {
	_, err := runCLI(t, "overview")
	assert.ErrorContains(t, err, "--file o --api")

	_, err = runCLI(t, "overview", "--file", writeDump(t), "--timeline", "quarter")
	assert.Error(t, err)

	_, err = runCLI(t, "overview", "--file", writeDump(t), "-o", "xml")
	assert.ErrorContains(t, err, "xml")
}
