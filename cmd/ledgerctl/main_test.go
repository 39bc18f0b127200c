package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnines/ledger-core/pkg/export"
	"github.com/saturnines/ledger-core/pkg/report"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--env-file", ""}, args...))
	err := root.Execute()
	return stdout.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const reportJSON = `{
	"Columns": {"Column": [{"ColTitle": "Date"}, {"ColTitle": "Transaction Type"}, {"ColTitle": "Amount"}]},
	"Rows": {"Row": [
		{"ColData": [{"value": "2021-01-02"}, {"value": "Invoice", "id": "130"}, {"value": "10.00"}], "type": "Data"},
		{"ColData": [{"value": "Beginning Balance"}, {"value": ""}, {"value": "5.00"}], "type": "Data"}
	]}
}`

func TestFlattenCommand(t *testing.T) {
	in := writeFile(t, "report.json", reportJSON)

	stdout, err := run(t, "flatten", in)
	require.NoError(t, err)

	var table []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &table))
	assert.Equal(t, []map[string]interface{}{
		{"Date": "2021-01-02", "Transaction Type": "Invoice", "Amount": "10.00", "transactionId": "130"},
	}, table)
}

func TestFlattenCommandXLSX(t *testing.T) {
	in := writeFile(t, "report.json", reportJSON)
	out := filepath.Join(t.TempDir(), "table.xlsx")

	_, err := run(t, "flatten", in, "--out", out)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := export.ReadXLSX(f)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Date", "Transaction Type", "Amount", "transactionId"},
		{"2021-01-02", "Invoice", "10.00", "130"},
	}, rows)
}

const mapsYAML = `
transforms:
  invoice:
    keys:
      id: Id
      customer: CustomerRef.name
      total: TotalAmt
merges:
  invoice:
    keys:
      total: TotalAmt
      customer:
        path: CustomerRef.name
        should_set: true
`

func TestTransformCommand(t *testing.T) {
	maps := writeFile(t, "maps.yaml", mapsYAML)
	in := writeFile(t, "invoices.json", `[
		{"Id": "1", "TotalAmt": 10, "CustomerRef": {"name": "A"}},
		{"Id": "1", "TotalAmt": 10, "CustomerRef": {"name": "A"}},
		{"Id": "2", "TotalAmt": 20}
	]`)

	stdout, err := run(t, "transform", in, "--map", maps, "--name", "invoice", "--dedupe", "id")
	require.NoError(t, err)

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, []map[string]interface{}{
		{"id": "1", "customer": "A", "total": 10.0},
		{"id": "2", "customer": nil, "total": 20.0},
	}, got)
}

func TestTransformCommandBuiltin(t *testing.T) {
	in := writeFile(t, "invoice.json", `{"Id": "130", "DocNumber": "1037", "TotalAmt": 5}`)

	stdout, err := run(t, "transform", in, "--builtin", "qbo-transaction", "--endpoint", "Invoice")
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "invoice", got["transactionType"])
	assert.Equal(t, "1037", got["transactionNum"])
}

func TestMergeCommand(t *testing.T) {
	maps := writeFile(t, "maps.yaml", mapsYAML)
	source := writeFile(t, "edited.json", `{"total": 15, "customer": "B"}`)
	dest := writeFile(t, "original.json", `{"Id": "1", "TotalAmt": 10}`)

	stdout, err := run(t, "merge", source, dest, "--map", maps, "--name", "invoice")
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, map[string]interface{}{
		"Id":          "1",
		"TotalAmt":    15.0,
		"CustomerRef": map[string]interface{}{"name": "B"},
	}, got)
}

func TestMergeCommandRejectsPathListWhenCreating(t *testing.T) {
	source := writeFile(t, "edited.json", `{"transactionAmount": 15}`)
	_, err := run(t, "merge", source, "--builtin", "qbo-transaction")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be used when creating objects")
}

func TestMapRequired(t *testing.T) {
	in := writeFile(t, "records.json", `[]`)
	_, err := run(t, "transform", in)
	assert.ErrorContains(t, err, "--map and --name are required")
}

func TestReportCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		rows := []interface{}{
			map[string]interface{}{"ColData": []interface{}{map[string]interface{}{"value": q.Get("start_date")}}, "type": "Data"},
		}
		if q.Get("start_date") == "2021-01-01" && q.Get("end_date") == "2021-01-04" {
			rows = append(rows, map[string]interface{}{"ColData": []interface{}{map[string]interface{}{"value": report.Truncated}}, "type": "Data"})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"Columns": map[string]interface{}{"Column": []interface{}{map[string]interface{}{"ColTitle": "Date"}}},
			"Rows":    map[string]interface{}{"Row": rows},
		})
	}))
	defer server.Close()

	job := writeFile(t, "job.yaml", fmt.Sprintf(`
name: test
endpoint: %s
report_type: GeneralLedger
period:
  start_date: "2021-01-01"
  end_date: "2021-01-04"
cache_size: 4
`, server.URL))

	stdout, err := run(t, "report", "--job", job)
	require.NoError(t, err)

	var table []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &table))
	assert.Equal(t, []map[string]interface{}{{"Date": "2021-01-01"}, {"Date": "2021-01-03"}}, table)
}
