package payload

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Parse validates a raw JSON payload and returns the normalized receipt.
// Legacy-shaped payloads are remapped to the canonical shape first. All
// payload problems are reported as *ValidationError.
func Parse(data []byte) (*Receipt, error) {
	var raw rawPayload
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, validationErrorf("payload", "must be a JSON object")
	}

	if raw.isLegacy() {
		remapped, err := remapLegacy(&raw)
		if err != nil {
			return nil, err
		}
		raw = *remapped
	}

	return normalize(&raw)
}

// ParseFile reads and parses a payload from disk.
func ParseFile(path string) (*Receipt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload file: %w", err)
	}
	return Parse(data)
}

func normalize(raw *rawPayload) (*Receipt, error) {
	items, err := parseItems(raw.Items)
	if err != nil {
		return nil, err
	}

	headerInfo, err := parseInfo(raw.HeaderInfo, "header_info")
	if err != nil {
		return nil, err
	}
	footerInfo, err := parseInfo(raw.FooterInfo, "footer_info")
	if err != nil {
		return nil, err
	}

	tx, err := parseTransaction(raw.TransactionInfo)
	if err != nil {
		return nil, err
	}

	rec := &Receipt{
		HeaderInfo: headerInfo,
		FooterInfo: footerInfo,
		Items:      items,
		CreatedAt:  time.Now(),
	}
	resolveFinancials(rec, tx)

	return rec, nil
}

// resolveFinancials fills the financial fields with a fixed precedence
// cascade. Each rule only fires when its preconditions hold, in order:
//
//  1. total defaults to the sum of line totals
//  2. a discount applies only while total still equals that sum
//  3. received−change overrides everything: POS-reported cash handling is
//     ground truth, even over an explicitly supplied total
//  4. a missing change or received is derived from total
//  5. a missing discount is inferred when received and change were given
//
// Resolved received/change/discount are also written into the footer block,
// overwriting caller-supplied entries of the same name.
func resolveFinancials(rec *Receipt, tx transaction) {
	itemsTotal := rec.ItemsTotal()

	total := tx.Total
	received := tx.Received
	change := tx.Change
	discount := tx.Discount

	if total == nil {
		total = &itemsTotal
	}

	if discount != nil && total.Equal(itemsTotal) {
		discounted := itemsTotal.Sub(*discount)
		total = &discounted
	}

	if received != nil && change != nil {
		settled := received.Sub(*change)
		total = &settled
	}

	if received != nil && change == nil {
		c := received.Sub(*total)
		change = &c
	}

	if change != nil && received == nil {
		r := total.Add(*change)
		received = &r
	}

	if received != nil && change != nil && discount == nil {
		d := itemsTotal.Sub(*total)
		discount = &d
	}

	rec.Total = *total
	rec.Received = received
	rec.Change = change
	rec.Discount = discount

	if received != nil {
		rec.FooterInfo.Set("Received", formatAmount(*received))
	}
	if change != nil {
		rec.FooterInfo.Set("Change", formatAmount(*change))
	}
	if discount != nil {
		rec.FooterInfo.Set("Discount", formatAmount(*discount))
	}
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// remapLegacy rewrites the legacy POS shape into the canonical one, then
// normalization proceeds as usual. Customer fields become header entries,
// points a footer entry, and the top-level total plus any extras form a
// synthetic transaction_info block.
func remapLegacy(raw *rawPayload) (*rawPayload, error) {
	header := Info{}

	if raw.Customer != nil {
		var customer Info
		if err := json.Unmarshal(raw.Customer, &customer); err != nil {
			return nil, validationErrorf("customer", "must be an object")
		}
		for _, e := range customer {
			header = append(header, Entry{
				Key:   "Customer " + capitalize(e.Key),
				Value: e.Value,
			})
		}
	}
	if !isNull(raw.Transection) {
		header = append(header, Entry{Key: "Transaction", Value: scalarString(raw.Transection)})
	}
	if !isNull(raw.Promotion) {
		header = append(header, Entry{Key: "Promotion", Value: scalarString(raw.Promotion)})
	}

	footer := Info{}
	if !isNull(raw.Points) {
		footer = append(footer, Entry{Key: "Points", Value: scalarString(raw.Points)})
	}

	tx := map[string]json.RawMessage{}
	if !isNull(raw.Total) {
		tx["total"] = raw.Total
	}
	if raw.Extras != nil {
		var extras map[string]json.RawMessage
		if err := json.Unmarshal(raw.Extras, &extras); err != nil {
			return nil, validationErrorf("extras", "must be an object")
		}
		for key, value := range extras {
			tx[key] = value
		}
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	footerJSON, err := json.Marshal(footer)
	if err != nil {
		return nil, err
	}
	txJSON, err := json.Marshal(tx)
	if err != nil {
		return nil, err
	}

	return &rawPayload{
		Items:           raw.Items,
		HeaderInfo:      headerJSON,
		FooterInfo:      footerJSON,
		TransactionInfo: txJSON,
	}, nil
}

func scalarString(raw json.RawMessage) string {
	var v interface{}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return string(raw)
	}
	return stringify(v)
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
}
