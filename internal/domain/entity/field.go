package entity

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Text es un campo del backend que puede llegar como string, número o null.
// Se conserva el texto crudo; null y ausente quedan como "".
type Text string

// UnmarshalJSON acepta strings, números y null sin fallar.
func (t *Text) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*t = ""
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(raw)
	return nil
}

// String devuelve el valor sin espacios laterales.
func (t Text) String() string { return strings.TrimSpace(string(t)) }

// Present indica si el campo trae algún valor no vacío.
func (t Text) Present() bool { return t.String() != "" }

// Amount monto en formato decimal-string ("1,250.50"). Puede traer separadores
// de miles; un valor no numérico equivale a cero.
type Amount string

// UnmarshalJSON reutiliza la decodificación tolerante de Text.
func (a *Amount) UnmarshalJSON(b []byte) error {
	var t Text
	if err := t.UnmarshalJSON(b); err != nil {
		return err
	}
	*a = Amount(t)
	return nil
}

// Present indica si el monto trae algún valor no vacío.
func (a Amount) Present() bool { return strings.TrimSpace(string(a)) != "" }

// Decimal convierte el monto eliminando comas, espacios y símbolo de rupia.
// ok es false si el valor está vacío o no es numérico; en ese caso devuelve cero.
func (a Amount) Decimal() (d decimal.Decimal, ok bool) {
	s := strings.TrimSpace(string(a))
	if s == "" {
		return decimal.Zero, false
	}
	s = amountCleaner.Replace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Value devuelve el monto o cero si no es parseable.
func (a Amount) Value() decimal.Decimal {
	d, _ := a.Decimal()
	return d
}

var amountCleaner = strings.NewReplacer(",", "", " ", "", "\u00a0", "", "₹", "")
