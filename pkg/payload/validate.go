package payload

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError reports a malformed payload. The field name is part of the
// message so API callers can see exactly what to fix.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid payload: field %q %s", e.Field, e.Reason)
}

func validationErrorf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// rawPayload captures both the canonical and the legacy top-level shapes.
// Sections stay raw so each one can be validated with a precise error.
type rawPayload struct {
	Items           json.RawMessage `json:"items"`
	HeaderInfo      json.RawMessage `json:"header_info"`
	FooterInfo      json.RawMessage `json:"footer_info"`
	TransactionInfo json.RawMessage `json:"transaction_info"`

	// Legacy shape. "transection" is the historical spelling used by the
	// first POS integration and has to stay.
	Customer    json.RawMessage `json:"customer"`
	Transection json.RawMessage `json:"transection"`
	Promotion   json.RawMessage `json:"promotion"`
	Points      json.RawMessage `json:"points"`
	Extras      json.RawMessage `json:"extras"`
	Total       json.RawMessage `json:"total"`
}

func (p *rawPayload) isLegacy() bool {
	return p.Customer != nil || p.Transection != nil || p.Promotion != nil ||
		p.Points != nil || p.Extras != nil
}

func parseItems(raw json.RawMessage) ([]Item, error) {
	if isNull(raw) {
		return nil, validationErrorf("items", "is required and must be a non-empty list")
	}

	var rawItems []json.RawMessage
	if err := json.Unmarshal(raw, &rawItems); err != nil {
		return nil, validationErrorf("items", "must be a list")
	}
	if len(rawItems) == 0 {
		return nil, validationErrorf("items", "is required and must be a non-empty list")
	}

	items := make([]Item, 0, len(rawItems))
	for i, rawItem := range rawItems {
		var fields struct {
			Name     json.RawMessage `json:"name"`
			Amount   json.RawMessage `json:"amount"`
			Quantity json.RawMessage `json:"quantity"`
		}
		if err := json.Unmarshal(rawItem, &fields); err != nil {
			return nil, validationErrorf(fmt.Sprintf("items[%d]", i), "must be an object")
		}
		if isNull(fields.Name) || isNull(fields.Amount) || isNull(fields.Quantity) {
			return nil, validationErrorf(fmt.Sprintf("items[%d]", i),
				"requires 'name', 'amount', and 'quantity'")
		}

		name, err := coerceString(fields.Name)
		if err != nil {
			return nil, validationErrorf(fmt.Sprintf("items[%d].name", i), "must be a string")
		}
		amount, err := coerceDecimal(fields.Amount)
		if err != nil {
			return nil, validationErrorf(fmt.Sprintf("items[%d].amount", i), "must be a number")
		}
		quantity, err := coerceDecimal(fields.Quantity)
		if err != nil {
			return nil, validationErrorf(fmt.Sprintf("items[%d].quantity", i), "must be a number")
		}

		items = append(items, Item{Name: name, Amount: amount, Quantity: quantity})
	}

	return items, nil
}

func parseInfo(raw json.RawMessage, field string) (Info, error) {
	if isNull(raw) {
		return Info{}, nil
	}
	var info Info
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, validationErrorf(field, "must be an object")
	}
	return info, nil
}

// transaction holds the four optional financial fields before reconciliation.
type transaction struct {
	Received *decimal.Decimal
	Change   *decimal.Decimal
	Discount *decimal.Decimal
	Total    *decimal.Decimal
}

func parseTransaction(raw json.RawMessage) (transaction, error) {
	var tx transaction
	if isNull(raw) {
		return tx, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return tx, validationErrorf("transaction_info", "must be an object")
	}

	for key, dst := range map[string]**decimal.Decimal{
		"received": &tx.Received,
		"change":   &tx.Change,
		"discount": &tx.Discount,
		"total":    &tx.Total,
	} {
		raw, ok := fields[key]
		if !ok || isNull(raw) {
			continue
		}
		value, err := coerceDecimal(raw)
		if err != nil {
			return tx, validationErrorf("transaction_info."+key, "must be a number")
		}
		*dst = &value
	}

	return tx, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// coerceString accepts JSON strings as well as bare numbers, which some POS
// frontends send for item names.
func coerceString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", fmt.Errorf("not a string")
}

// coerceDecimal accepts JSON numbers and numeric strings.
func coerceDecimal(raw json.RawMessage) (decimal.Decimal, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return decimal.NewFromString(n.String())
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return decimal.NewFromString(s)
	}
	return decimal.Zero, fmt.Errorf("not a number")
}
