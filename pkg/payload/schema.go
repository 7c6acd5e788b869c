// Package payload defines the transaction payload accepted by the receipt
// service and turns both the canonical and the legacy POS shapes into one
// normalized record ready for rendering.
package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Item is a single purchased line. Immutable once parsed.
type Item struct {
	Name     string
	Amount   decimal.Decimal // unit price
	Quantity decimal.Decimal
}

// LineTotal returns Amount × Quantity.
func (it Item) LineTotal() decimal.Decimal {
	return it.Amount.Mul(it.Quantity)
}

// Entry is one key/value row of a header or footer block.
type Entry struct {
	Key   string
	Value string
}

// Info is an ordered key/value list. JSON objects decode into it with their
// key order preserved, which is what the renderer prints.
type Info []Entry

// Get returns the value for key and whether it is present.
func (m Info) Get(key string) (string, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Set replaces the value for key in place, or appends a new entry.
func (m *Info) Set(key, value string) {
	for i := range *m {
		if (*m)[i].Key == key {
			(*m)[i].Value = value
			return
		}
	}
	*m = append(*m, Entry{Key: key, Value: value})
}

// UnmarshalJSON decodes a JSON object keeping key order. Values may be any
// scalar; they are stringified the way the POS frontends expect.
func (m *Info) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	out := Info{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", keyTok)
		}

		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return err
		}
		out = append(out, Entry{Key: key, Value: stringify(value)})
	}

	// Closing brace
	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = out
	return nil
}

// MarshalJSON encodes the list back to a JSON object in order.
func (m Info) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(t)
	}
}

// Receipt is the normalized transaction record handed to the renderer.
// It is built once per request and never mutated afterward.
type Receipt struct {
	HeaderInfo Info
	FooterInfo Info
	Items      []Item

	// Resolved financial fields. Total is always set after normalization;
	// the other three stay nil when the payload gave no way to infer them.
	Received *decimal.Decimal
	Change   *decimal.Decimal
	Discount *decimal.Decimal
	Total    decimal.Decimal

	CreatedAt time.Time
}

// ItemsTotal returns the sum of all line totals.
func (r *Receipt) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range r.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}
