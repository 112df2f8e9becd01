package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"babycare-backend/internal/parse"
)

// answer is a form field that may arrive as a JSON string or number, so
// "2,5", "x" and 2.5 are all accepted.
type answer string

func (a *answer) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*a = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = answer(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("expected a string or number, got %s", b)
		}
		*a = answer(n)
	}
	return nil
}

func (a answer) decimal() (float64, error) {
	return parse.Decimal(string(a))
}

func (a answer) optionalDecimal() (*float64, error) {
	return parse.OptionalDecimal(string(a))
}
