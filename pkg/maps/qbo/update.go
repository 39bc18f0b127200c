// Package qbo holds ready-made maps between QuickBooks Online transaction
// objects and flat transaction records.
//
// A flat transaction carries transactionType (invoice, payment,
// journalEntry, ...), transactionEndpoint (the API entity, e.g. Purchase)
// and optionally transactionEntityType (customer or vendor). Lines carry
// lineDetailType, the QuickBooks DetailType of the line.
package qbo

import (
	"slices"

	"github.com/saturnines/ledger-core/pkg/merge"
)

// detailTypeDestinations locates line fields inside each line detail type
var detailTypeDestinations = map[string]map[string]string{
	"SalesItemLineDetail": {
		"lineItem":     "SalesItemLineDetail.ItemRef.name",
		"lineItemId":   "SalesItemLineDetail.ItemRef.value",
		"lineQuantity": "SalesItemLineDetail.Qty",
		"lineRate":     "SalesItemLineDetail.UnitPrice",
	},
	"AccountBasedExpenseLineDetail": {
		"lineAccount":   "AccountBasedExpenseLineDetail.AccountRef.name",
		"lineAccountId": "AccountBasedExpenseLineDetail.AccountRef.value",
	},
	"JournalEntryLineDetail": {
		"lineAccount":   "JournalEntryLineDetail.AccountRef.name",
		"lineAccountId": "JournalEntryLineDetail.AccountRef.value",
	},
	"ItemBasedExpenseLineDetail": {
		"lineItem":     "ItemBasedExpenseLineDetail.ItemRef.name",
		"lineItemId":   "ItemBasedExpenseLineDetail.ItemRef.value",
		"lineQuantity": "ItemBasedExpenseLineDetail.Qty",
		"lineRate":     "ItemBasedExpenseLineDetail.UnitPrice",
	},
}

// salesTransactionTypes may clear their address and email fields
var salesTransactionTypes = []string{"invoice", "creditMemo", "salesReceipt", "refundReceipt"}

func str(r merge.Record, key string) string {
	s, _ := r[key].(string)
	return s
}

// byDetailType writes a line key inside the line's detail block
func byDetailType(key string) merge.Func {
	return func(source, _ merge.Record) (merge.Accessor, error) {
		if path, ok := detailTypeDestinations[str(source, "lineDetailType")][key]; ok {
			return merge.Path(path), nil
		}
		return nil, nil
	}
}

// journalEntryOnly creates path on lines of journal entries only
func journalEntryOnly(path string) merge.Func {
	return func(_, parent merge.Record) (merge.Accessor, error) {
		if str(parent, "transactionType") == "journalEntry" {
			return merge.Field{Path: path, ShouldSet: true}, nil
		}
		return nil, nil
	}
}

// TransactionLineUpdateMap writes a flat line into a QuickBooks line. It
// avoids path lists so it can also build new lines from scratch.
func TransactionLineUpdateMap() merge.Map {
	return merge.Map{
		{Key: "lineId", Accessor: merge.Path("Id")},
		{Key: "lineDescription", Accessor: merge.Field{Path: "Description", ShouldSet: true, Nullable: true}},
		{Key: "lineAccount", Accessor: byDetailType("lineAccount")},
		{Key: "lineAccountId", Accessor: byDetailType("lineAccountId")},
		{Key: "lineItem", Accessor: byDetailType("lineItem")},
		{Key: "lineItemId", Accessor: byDetailType("lineItemId")},
		{Key: "lineQuantity", Accessor: byDetailType("lineQuantity")},
		{Key: "lineRate", Accessor: byDetailType("lineRate")},
		{Key: "lineAmount", Accessor: merge.Path("Amount")},
		{Key: "linePostingType", Accessor: merge.Path("JournalEntryLineDetail.PostingType")},
		{Key: "lineDetailType", Accessor: merge.Path("DetailType")},
		{Key: "lineEntity", Accessor: journalEntryOnly("JournalEntryLineDetail.Entity.EntityRef.name")},
		{Key: "lineEntityId", Accessor: journalEntryOnly("JournalEntryLineDetail.Entity.EntityRef.value")},
	}
}

// entityRef is where the transaction's counterparty lives
func entityRef(endpoint, entityType string) string {
	switch {
	case endpoint == "Purchase":
		return "EntityRef"
	case entityType == "customer":
		return "CustomerRef"
	case entityType == "vendor":
		return "VendorRef"
	}
	return ""
}

func entityField(field string) merge.Func {
	return func(source, _ merge.Record) (merge.Accessor, error) {
		if ref := entityRef(str(source, "transactionEndpoint"), str(source, "transactionEntityType")); ref != "" {
			return merge.Field{Path: ref + "." + field, ShouldSet: true}, nil
		}
		return nil, nil
	}
}

// clearableOnSales lets sales documents create or blank path
func clearableOnSales(path string) merge.Func {
	return func(source, _ merge.Record) (merge.Accessor, error) {
		if slices.Contains(salesTransactionTypes, str(source, "transactionType")) {
			return merge.Field{Path: path, ShouldSet: true, Nullable: true}, nil
		}
		return merge.Path(path), nil
	}
}

func firstOf(paths ...string) merge.FirstOf {
	targets := make(merge.FirstOf, len(paths))
	for i, p := range paths {
		targets[i] = merge.Path(p)
	}
	return targets
}

// TransactionUpdateMap writes an edited flat transaction back into the raw
// QuickBooks object it came from. Lines are reconciled by lineId: listed
// transactionLines update, addLines append, deleteLines remove.
func TransactionUpdateMap() merge.Map {
	lines := TransactionLineUpdateMap()

	return merge.Map{
		{Key: "transactionId", Accessor: merge.Path("Id")},
		{Key: "transactionNum", Accessor: merge.Func(func(source, _ merge.Record) (merge.Accessor, error) {
			if str(source, "transactionType") == "payment" {
				return merge.Field{Path: "PaymentRefNum", ShouldSet: true}, nil
			}
			return merge.Field{Path: "DocNumber", ShouldSet: true}, nil
		})},
		{Key: "transactionEntityName", Accessor: entityField("name")},
		{Key: "transactionEntityId", Accessor: entityField("value")},
		{Key: "transactionEntityBillAddress", Accessor: clearableOnSales("BillAddr")},
		{Key: "transactionEntityShipAddress", Accessor: clearableOnSales("ShipAddr")},
		{Key: "transactionEntityEmail", Accessor: clearableOnSales("BillEmail.Address")},
		{Key: "transactionDate", Accessor: merge.Path("TxnDate")},
		{Key: "transactionAmount", Accessor: firstOf("TotalAmt", "Amount")},
		{Key: "transactionAccount", Accessor: firstOf(
			"DepositToAccountRef.name",
			"CheckPayment.BankAccountRef.name",
			"CreditCardPayment.CCAccountRef.name",
		)},
		{Key: "transactionAccountId", Accessor: firstOf(
			"DepositToAccountRef.value",
			"CheckPayment.BankAccountRef.value",
			"CreditCardPayment.CCAccountRef.value",
		)},
		{Key: "syncToken", Accessor: merge.Path("SyncToken")},
		{Key: "transactionFromAccount", Accessor: firstOf("FromAccountRef.name", "BankAccountRef.name")},
		{Key: "transactionFromAccountId", Accessor: firstOf("FromAccountRef.value", "BankAccountRef.value")},
		{Key: "transactionToAccount", Accessor: firstOf("ToAccountRef.name", "CreditCardAccountRef.name")},
		{Key: "transactionToAccountId", Accessor: firstOf("ToAccountRef.value", "CreditCardAccountRef.value")},
		// lines are updated, then added, then deleted
		{Key: "transactionLines", Accessor: merge.Array{
			Accessor: "Line",
			Matcher:  []string{"lineId", "Id"},
			Map:      lines,
		}},
		{Key: "addLines", Accessor: merge.Array{
			Accessor:  "Line",
			Map:       lines,
			ShouldSet: true,
		}},
		{Key: "deleteLines", Accessor: merge.Array{
			Accessor:     "Line",
			Matcher:      []string{"lineId", "Id"},
			ShouldDelete: true,
		}},
	}
}
