package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Money is a decimal amount as sent by the backend, e.g. "-1234.50".
// Numbers are accepted too and kept verbatim.
type Money string

func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*m = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*m = Money(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("money: %w", err)
		}
		*m = Money(n.String())
	}
	return nil
}

// Amount is one entry of a name -> amount mapping.
type Amount struct {
	Name  string
	Value Money
}

// Amounts is a name -> amount mapping in response order.
type Amounts []Amount

func (a *Amounts) UnmarshalJSON(b []byte) error {
	var out Amounts
	err := decodeObject(b, func(key string, raw json.RawMessage) error {
		var v Money
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("amount %q: %w", key, err)
		}
		out = append(out, Amount{Name: key, Value: v})
		return nil
	})
	if err != nil {
		return err
	}
	*a = out
	return nil
}

func (a Amounts) MarshalJSON() ([]byte, error) {
	return encodeObject(len(a), func(i int) (string, any) { return a[i].Name, string(a[i].Value) })
}

func (a Amounts) Get(name string) (Money, bool) {
	for _, e := range a {
		if e.Name == name {
			return e.Value, true
		}
	}
	return "", false
}

// BreakdownEntry is the per-client (or per-project) summary.
type BreakdownEntry struct {
	Name            string `json:"-"`
	TotalRevenue    Money  `json:"total_revenue"`
	TotalDirectCost Money  `json:"total_direct_cost"`
	NetFromClient   Money  `json:"net_from_client"`
}

// Breakdown is a name -> BreakdownEntry mapping in response order.
type Breakdown []BreakdownEntry

func (br *Breakdown) UnmarshalJSON(b []byte) error {
	var out Breakdown
	err := decodeObject(b, func(key string, raw json.RawMessage) error {
		var e BreakdownEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return fmt.Errorf("breakdown %q: %w", key, err)
		}
		e.Name = key
		out = append(out, e)
		return nil
	})
	if err != nil {
		return err
	}
	*br = out
	return nil
}

func (br Breakdown) MarshalJSON() ([]byte, error) {
	return encodeObject(len(br), func(i int) (string, any) { return br[i].Name, br[i] })
}

// decodeObject walks a JSON object calling fn for every member in order.
// A JSON null is treated as an empty object.
func decodeObject(b []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(b))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("value of %q: %w", key, err)
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}

	_, err = dec.Token()
	return err
}

func encodeObject(n int, item func(i int) (string, any)) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, v := item(i)
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
