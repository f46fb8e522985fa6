package payroll

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// LenientDecimal decodes a JSON number, numeric string, empty string or null.
// Anything else decodes as not Valid instead of failing the whole body.
type LenientDecimal struct {
	Value decimal.Decimal
	Valid bool
}

func NewLenientDecimal(v decimal.Decimal) LenientDecimal {
	return LenientDecimal{Value: v, Valid: true}
}

func (d *LenientDecimal) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	*d = LenientDecimal{}

	switch {
	case bytes.Equal(raw, []byte("null")):
		d.Valid = true
	case len(raw) > 0 && raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
		if s == "" {
			d.Valid = true
			return nil
		}
		v, err := decimal.NewFromString(s)
		if err != nil {
			return nil
		}
		d.Value, d.Valid = v, true
	case len(raw) > 0 && (raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9')):
		v, err := decimal.NewFromString(string(raw))
		if err != nil {
			return nil
		}
		d.Value, d.Valid = v, true
	}
	return nil
}

func (d LenientDecimal) MarshalJSON() ([]byte, error) {
	return d.Value.MarshalJSON()
}

// Decimal returns the decoded value, or zero when the input was not numeric.
func (d LenientDecimal) Decimal() decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Value
}

// LenientText decodes a JSON string or number as text. Other kinds decode as "".
type LenientText string

func (t *LenientText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = LenientText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*t = LenientText(n.String())
		return nil
	}
	*t = ""
	return nil
}

func (t LenientText) String() string {
	return string(t)
}

// EmployeeRef decodes an employee id sent as a number or numeric string.
// Zero means absent.
type EmployeeRef int64

func (e *EmployeeRef) UnmarshalJSON(data []byte) error {
	*e = 0
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return nil
	}
	v, err := n.Int64()
	if err != nil || v < 0 {
		return nil
	}
	*e = EmployeeRef(v)
	return nil
}

// isJSONKind reports whether the first significant byte of data is want.
func isJSONKind(data []byte, want byte) bool {
	raw := bytes.TrimSpace(data)
	return len(raw) > 0 && raw[0] == want
}
