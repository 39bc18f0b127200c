package qbo

import (
	"fmt"
	"strings"

	"github.com/saturnines/ledger-core/pkg/transform"
)

// EndpointProp is the Options.Props key naming the API entity a raw
// transaction was read from
const EndpointProp = "endpoint"

// TransactionLineExtractMap flattens one QuickBooks line
func TransactionLineExtractMap() transform.Map {
	return transform.Map{
		"lineId":          transform.Path("Id"),
		"lineDescription": transform.Path("Description"),
		"lineAmount":      transform.Path("Amount"),
		"lineDetailType":  transform.Path("DetailType"),
		"linePostingType": transform.Path("JournalEntryLineDetail.PostingType"),
		"lineAccount":     detailPaths("lineAccount"),
		"lineAccountId":   detailPaths("lineAccountId"),
		"lineItem":        detailPaths("lineItem"),
		"lineItemId":      detailPaths("lineItemId"),
		"lineQuantity":    detailPaths("lineQuantity"),
		"lineRate":        detailPaths("lineRate"),
		"lineEntity":      transform.Path("JournalEntryLineDetail.Entity.EntityRef.name"),
		"lineEntityId":    transform.Path("JournalEntryLineDetail.Entity.EntityRef.value"),
	}
}

// detailPaths reads a line key from whichever detail block carries it
func detailPaths(key string) transform.Paths {
	var paths transform.Paths
	for _, detail := range []string{
		"SalesItemLineDetail",
		"AccountBasedExpenseLineDetail",
		"JournalEntryLineDetail",
		"ItemBasedExpenseLineDetail",
	} {
		if p, ok := detailTypeDestinations[detail][key]; ok {
			paths = append(paths, p)
		}
	}
	return paths
}

// TransactionExtractMap flattens a raw QuickBooks transaction into the
// record shape TransactionUpdateMap writes back. The endpoint is taken from
// Options.Props[EndpointProp].
func TransactionExtractMap() transform.Map {
	lines := TransactionLineExtractMap()

	return transform.Map{
		"transactionId":       transform.Path("Id"),
		"transactionEndpoint": transform.Func(endpointOf),
		"transactionType": transform.Func(func(_, _, props transform.Record) (interface{}, error) {
			endpoint, err := endpointOf(nil, nil, props)
			if err != nil {
				return nil, err
			}
			e := endpoint.(string)
			return strings.ToLower(e[:1]) + e[1:], nil
		}),
		"transactionEntityType": transform.Func(func(source, _, _ transform.Record) (interface{}, error) {
			switch {
			case source["CustomerRef"] != nil:
				return "customer", nil
			case source["VendorRef"] != nil:
				return "vendor", nil
			}
			if ref, ok := source["EntityRef"].(map[string]interface{}); ok {
				if t, ok := ref["type"].(string); ok && t != "" {
					return strings.ToLower(t), nil
				}
			}
			return nil, nil
		}),
		"transactionNum":               transform.Paths{"DocNumber", "PaymentRefNum"},
		"transactionEntityName":        transform.Paths{"CustomerRef.name", "VendorRef.name", "EntityRef.name"},
		"transactionEntityId":          transform.Paths{"CustomerRef.value", "VendorRef.value", "EntityRef.value"},
		"transactionEntityBillAddress": transform.Path("BillAddr"),
		"transactionEntityShipAddress": transform.Path("ShipAddr"),
		"transactionEntityEmail":       transform.Path("BillEmail.Address"),
		"transactionDate":              transform.Path("TxnDate"),
		"transactionAmount":            transform.Paths{"TotalAmt", "Amount"},
		"transactionAccount": transform.Paths{
			"DepositToAccountRef.name",
			"CheckPayment.BankAccountRef.name",
			"CreditCardPayment.CCAccountRef.name",
		},
		"transactionAccountId": transform.Paths{
			"DepositToAccountRef.value",
			"CheckPayment.BankAccountRef.value",
			"CreditCardPayment.CCAccountRef.value",
		},
		"syncToken":                transform.Path("SyncToken"),
		"transactionFromAccount":   transform.Paths{"FromAccountRef.name", "BankAccountRef.name"},
		"transactionFromAccountId": transform.Paths{"FromAccountRef.value", "BankAccountRef.value"},
		"transactionToAccount":     transform.Paths{"ToAccountRef.name", "CreditCardAccountRef.name"},
		"transactionToAccountId":   transform.Paths{"ToAccountRef.value", "CreditCardAccountRef.value"},
		"transactionLines": transform.Func(func(source, _, _ transform.Record) (interface{}, error) {
			raw, _ := source["Line"].([]interface{})
			out := make([]interface{}, 0, len(raw))
			for _, item := range raw {
				line, ok := item.(map[string]interface{})
				if !ok {
					continue
				}
				flat, err := transform.Transform(line, lines, nil)
				if err != nil {
					return nil, err
				}
				out = append(out, flat)
			}
			return out, nil
		}),
	}
}

// TransactionExtractOptions sets the endpoint prop for TransactionExtractMap
func TransactionExtractOptions(endpoint string) *transform.Options {
	return &transform.Options{Props: transform.Record{EndpointProp: endpoint}}
}

func endpointOf(_, _, props transform.Record) (interface{}, error) {
	endpoint, _ := props[EndpointProp].(string)
	if endpoint == "" {
		return nil, fmt.Errorf("missing %s prop", EndpointProp)
	}
	return endpoint, nil
}
