package qbo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnines/ledger-core/pkg/merge"
	"github.com/saturnines/ledger-core/pkg/node"
	"github.com/saturnines/ledger-core/pkg/transform"
)

func decode(t *testing.T, s string) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &out))
	return out
}

const rawInvoice = `{
	"Id": "130",
	"SyncToken": "3",
	"DocNumber": "1037",
	"TxnDate": "2021-01-04",
	"TotalAmt": 362.07,
	"CustomerRef": {"name": "Sonnenschein Family Store", "value": "24"},
	"BillAddr": {"Line1": "5647 Cypress Hill Ave."},
	"ShipAddr": {"Line1": "5647 Cypress Hill Ave."},
	"BillEmail": {"Address": "Familiystore@intuit.com"},
	"Line": [
		{
			"Id": "1",
			"Description": "Rock Fountain",
			"Amount": 275,
			"DetailType": "SalesItemLineDetail",
			"SalesItemLineDetail": {"ItemRef": {"name": "Rock Fountain", "value": "5"}, "Qty": 1, "UnitPrice": 275}
		},
		{
			"Id": "2",
			"Description": "Fountain Pump",
			"Amount": 87.07,
			"DetailType": "SalesItemLineDetail",
			"SalesItemLineDetail": {"ItemRef": {"name": "Pump", "value": "11"}, "Qty": 1, "UnitPrice": 87.07}
		}
	]
}`

func at(r interface{}, path string) interface{} {
	v, _ := node.Get(r, path)
	return v
}

func lines(t *testing.T, r map[string]interface{}) []interface{} {
	t.Helper()
	l, ok := r["Line"].([]interface{})
	require.True(t, ok, "Line is not a sequence")
	return l
}

func TestTransactionUpdateMap_Invoice(t *testing.T) {
	raw := decode(t, rawInvoice)
	edited := decode(t, `{
		"transactionId": "130",
		"transactionType": "invoice",
		"transactionEndpoint": "Invoice",
		"transactionEntityType": "customer",
		"transactionNum": "1038",
		"transactionEntityName": "Cool Cars",
		"transactionEntityId": "3",
		"transactionEntityEmail": "",
		"transactionAmount": 400,
		"transactionLines": [
			{"lineId": "1", "lineDetailType": "SalesItemLineDetail", "lineQuantity": 2, "lineAmount": 550, "lineDescription": null}
		],
		"addLines": [
			{"lineDetailType": "SalesItemLineDetail", "lineItem": "Sod", "lineItemId": "14", "lineAmount": 10, "lineDescription": "Sod"}
		],
		"deleteLines": [{"lineId": "2"}]
	}`)

	out, err := merge.MergeInto(edited, raw, TransactionUpdateMap(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "1038", out["DocNumber"])
	assert.Equal(t, map[string]interface{}{"name": "Cool Cars", "value": "3"}, out["CustomerRef"])
	assert.Equal(t, 400.0, out["TotalAmt"])
	assert.NotContains(t, out, "Amount", "TotalAmt exists, so Amount is not created")
	assert.Equal(t, "", at(out, "BillEmail.Address"))

	l := lines(t, out)
	require.Len(t, l, 2)
	updated := l[0].(map[string]interface{})
	assert.Equal(t, "1", updated["Id"])
	assert.Equal(t, 550.0, updated["Amount"])
	assert.Equal(t, 2.0, at(updated, "SalesItemLineDetail.Qty"))
	assert.Nil(t, updated["Description"])
	assert.Contains(t, updated, "Description")

	assert.Equal(t, map[string]interface{}{
		"Description":         "Sod",
		"Amount":              10.0,
		"DetailType":          "SalesItemLineDetail",
		"SalesItemLineDetail": map[string]interface{}{"ItemRef": map[string]interface{}{"name": "Sod", "value": "14"}},
	}, l[1])

	// the source object is untouched
	assert.Equal(t, decode(t, rawInvoice), raw)
}

func TestTransactionUpdateMap_PaymentNumber(t *testing.T) {
	raw := decode(t, `{"Id": "9", "TotalAmt": 5}`)
	out, err := merge.MergeInto(decode(t, `{"transactionType": "payment", "transactionNum": "P-1"}`), raw, TransactionUpdateMap(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "P-1", out["PaymentRefNum"])
	assert.NotContains(t, out, "DocNumber")
}

func TestTransactionUpdateMap_PurchaseEntity(t *testing.T) {
	raw := decode(t, `{"Id": "9", "EntityRef": {"name": "Old", "value": "1", "type": "Vendor"}}`)
	out, err := merge.MergeInto(decode(t, `{
		"transactionType": "purchase",
		"transactionEndpoint": "Purchase",
		"transactionEntityType": "vendor",
		"transactionEntityName": "New",
		"transactionEntityId": "2",
		"transactionEntityEmail": ""
	}`), raw, TransactionUpdateMap(), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"name": "New", "value": "2", "type": "Vendor"}, out["EntityRef"])
	assert.NotContains(t, out, "VendorRef")
	assert.NotContains(t, out, "BillEmail", "only sales documents create email fields")
}

func TestTransactionUpdateMap_JournalEntryLines(t *testing.T) {
	raw := decode(t, `{
		"Id": "20",
		"Line": [{
			"Id": "0",
			"Amount": 100,
			"DetailType": "JournalEntryLineDetail",
			"JournalEntryLineDetail": {"PostingType": "Debit", "AccountRef": {"name": "Checking", "value": "35"}}
		}]
	}`)
	edited := decode(t, `{
		"transactionType": "journalEntry",
		"transactionEndpoint": "JournalEntry",
		"transactionLines": [{
			"lineId": "0",
			"lineDetailType": "JournalEntryLineDetail",
			"lineAccount": "Savings",
			"lineAccountId": "36",
			"linePostingType": "Credit",
			"lineEntity": "Amy's Bird Sanctuary",
			"lineEntityId": "1"
		}]
	}`)

	out, err := merge.MergeInto(edited, raw, TransactionUpdateMap(), nil, nil)
	require.NoError(t, err)

	line := lines(t, out)[0].(map[string]interface{})
	assert.Equal(t, "Savings", at(line, "JournalEntryLineDetail.AccountRef.name"))
	assert.Equal(t, "36", at(line, "JournalEntryLineDetail.AccountRef.value"))
	assert.Equal(t, "Credit", at(line, "JournalEntryLineDetail.PostingType"))
	assert.Equal(t, "Amy's Bird Sanctuary", at(line, "JournalEntryLineDetail.Entity.EntityRef.name"))
	assert.Equal(t, "1", at(line, "JournalEntryLineDetail.Entity.EntityRef.value"))
}

func TestTransactionUpdateMap_LinesApplyInOrder(t *testing.T) {
	assert.Equal(t,
		[]string{"transactionLines", "addLines", "deleteLines"},
		TransactionUpdateMap().Keys()[len(TransactionUpdateMap())-3:],
	)

	edited := decode(t, `{
		"addLines": [{"lineId": "2", "lineDetailType": "SalesItemLineDetail", "lineAmount": 1}],
		"deleteLines": [{"lineId": "2"}]
	}`)
	for i := 0; i < 20; i++ {
		out, err := merge.MergeInto(edited, decode(t, rawInvoice), TransactionUpdateMap(), nil, nil)
		require.NoError(t, err)
		l := lines(t, out)
		require.Len(t, l, 1, "run %d", i)
		assert.Equal(t, "1", l[0].(map[string]interface{})["Id"])
	}
}

func TestTransactionLineUpdateMap_UnknownDetailType(t *testing.T) {
	out, err := merge.MergeInto(
		decode(t, `{"lineDetailType": "DiscountLineDetail", "lineAccount": "Discounts", "lineAmount": 5}`),
		nil, TransactionLineUpdateMap(), decode(t, `{"transactionType": "invoice"}`), &merge.Options{ShouldSet: true},
	)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"Amount": 5.0, "DetailType": "DiscountLineDetail"}, out)
}

func TestTransactionUpdateMap_IsValidForUpdates(t *testing.T) {
	assert.NoError(t, merge.Validate(TransactionUpdateMap(), nil))
	assert.NoError(t, merge.Validate(TransactionLineUpdateMap(), &merge.Options{ShouldSet: true}))
	assert.Error(t, merge.Validate(TransactionUpdateMap(), &merge.Options{ShouldSet: true}))
}

func TestTransactionExtractMap(t *testing.T) {
	raw := decode(t, rawInvoice)

	flat, err := transform.Transform(raw, TransactionExtractMap(), TransactionExtractOptions("Invoice"))
	require.NoError(t, err)

	assert.Equal(t, "130", flat["transactionId"])
	assert.Equal(t, "invoice", flat["transactionType"])
	assert.Equal(t, "Invoice", flat["transactionEndpoint"])
	assert.Equal(t, "customer", flat["transactionEntityType"])
	assert.Equal(t, "1037", flat["transactionNum"])
	assert.Equal(t, "Sonnenschein Family Store", flat["transactionEntityName"])
	assert.Equal(t, 362.07, flat["transactionAmount"])
	assert.Nil(t, flat["transactionAccount"])

	l, ok := flat["transactionLines"].([]interface{})
	require.True(t, ok)
	require.Len(t, l, 2)
	first := l[0].(map[string]interface{})
	assert.Equal(t, "Rock Fountain", first["lineItem"])
	assert.Equal(t, "5", first["lineItemId"])
	assert.Equal(t, 275.0, first["lineRate"])
	assert.Nil(t, first["lineAccount"])
}

func TestTransactionExtractMap_MissingEndpoint(t *testing.T) {
	flat, err := transform.Transform(decode(t, `{"Id": "1"}`), TransactionExtractMap(), nil)
	require.NoError(t, err)
	assert.Equal(t, "1", flat["transactionId"])
	assert.Nil(t, flat["transactionType"])
	assert.Nil(t, flat["transactionEndpoint"])
}

func TestExtractThenUpdateRoundTrip(t *testing.T) {
	raw := decode(t, rawInvoice)

	flat, err := transform.Transform(raw, TransactionExtractMap(), TransactionExtractOptions("Invoice"))
	require.NoError(t, err)

	out, err := merge.MergeInto(flat, raw, TransactionUpdateMap(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}
