// Package report turns hierarchical accounting reports into flat tables and
// queries report endpoints that truncate large results.
package report

import (
	"strings"

	"github.com/saturnines/ledger-core/pkg/tree"
)

// Row is one flattened report line, keyed by column title
type Row = map[string]interface{}

// BeginningBalance marks an opening-balance row that carries no transaction
const BeginningBalance = "Beginning Balance"

// specialColumns carry an entity id on their cell instead of in a column
// of their own. The transaction id arrives on the "Transaction Type" cell.
var specialColumns = []struct {
	title string
	key   string
}{
	{"Transaction Type", "transactionId"},
	{"Account", "accountId"},
	{"Name", "entityId"},
	{"Customer", "customerId"},
	{"Vendor", "vendorId"},
}

// FlattenReport flattens a report whose column definitions live in the same
// tree as its rows.
func FlattenReport(report interface{}) []Row {
	return Flatten(report, report)
}

// Flatten builds one Row per data row of rows, with titles taken from every
// ColTitle found in columns. Section headers, summaries, blank rows and
// beginning balances are dropped.
func Flatten(rows interface{}, columns interface{}) []Row {
	titles := ColumnTitles(columns)

	specialIdx := make(map[string]int, len(specialColumns))
	for _, sc := range specialColumns {
		for i, title := range titles {
			if title == sc.title {
				specialIdx[sc.key] = i
				break
			}
		}
	}

	var table []Row
	for _, candidate := range tree.FindNodesWithKey(rows, "ColData", nil) {
		rowType, _ := candidate["type"].(string)
		if !strings.EqualFold(rowType, "data") {
			continue
		}

		cells := cellsOf(candidate["ColData"])
		if skipRow(cells) {
			continue
		}

		row := make(Row, len(titles)+len(specialIdx))
		for i, title := range titles {
			if i < len(cells) {
				row[title] = cells[i]["value"]
			}
		}

		for _, sc := range specialColumns {
			i, ok := specialIdx[sc.key]
			if !ok || i >= len(cells) {
				continue
			}
			if id := cells[i]["id"]; id != nil && id != "" {
				row[sc.key] = id
			}
		}

		table = append(table, row)
	}

	return table
}

// ColumnTitles lists every ColTitle in columns, in tree order
func ColumnTitles(columns interface{}) []string {
	var titles []string
	for _, col := range tree.FindNodesWithKey(columns, "ColTitle", nil) {
		title, _ := col["ColTitle"].(string)
		titles = append(titles, title)
	}
	return titles
}

func cellsOf(v interface{}) []map[string]interface{} {
	list, _ := v.([]interface{})
	cells := make([]map[string]interface{}, len(list))
	for i, item := range list {
		cell, ok := item.(map[string]interface{})
		if !ok {
			cell = map[string]interface{}{}
		}
		cells[i] = cell
	}
	return cells
}

func skipRow(cells []map[string]interface{}) bool {
	if len(cells) == 0 {
		return true
	}
	if cells[0]["value"] == BeginningBalance {
		return true
	}
	for _, cell := range cells {
		if v := cell["value"]; v != nil && v != "" {
			return false
		}
	}
	return true
}
