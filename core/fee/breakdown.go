package fee

import (
	"encoding/json"
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

func init() {
	// the backend expects amounts as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// Breakdown is a set of named fee amounts plus an open-ended `others` map of label->amount.
// It is used both for amounts due (from the backend) and amounts being paid now (user input).
type Breakdown struct {
	Amounts map[Field]decimal.Decimal
	Others  map[string]decimal.Decimal
}

// NewBreakdown returns a Breakdown holding the given named amounts.
func NewBreakdown(amounts map[Field]decimal.Decimal) Breakdown {
	b := Breakdown{Amounts: make(map[Field]decimal.Decimal, len(amounts))}
	for f, amt := range amounts {
		b.Amounts[f] = amt
	}
	return b
}

// Get returns the amount of a field; missing fields are 0.
func (b Breakdown) Get(f Field) decimal.Decimal {
	if b.Amounts == nil {
		return decimal.Zero
	}
	return b.Amounts[f]
}

func (b *Breakdown) Set(f Field, amt decimal.Decimal) {
	if b.Amounts == nil {
		b.Amounts = make(map[Field]decimal.Decimal)
	}
	b.Amounts[f] = amt
}

func (b *Breakdown) SetOther(label string, amt decimal.Decimal) {
	if b.Others == nil {
		b.Others = make(map[string]decimal.Decimal)
	}
	b.Others[label] = amt
}

// OtherLabels returns the labels of the `others` map, sorted.
func (b Breakdown) OtherLabels() []string {
	labels := make([]string, 0, len(b.Others))
	for l := range b.Others {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

func (b Breakdown) IsEmpty() bool {
	return len(b.Amounts) == 0 && len(b.Others) == 0
}

// Merge returns a copy of b with every amount of o added to it.
func (b Breakdown) Merge(o Breakdown) Breakdown {
	out := Breakdown{}
	for _, src := range []Breakdown{b, o} {
		for f, amt := range src.Amounts {
			out.Set(f, out.Get(f).Add(amt))
		}
		for l, amt := range src.Others {
			prev := decimal.Zero
			if out.Others != nil {
				prev = out.Others[l]
			}
			out.SetOther(l, prev.Add(amt))
		}
	}
	return out
}

func (b Breakdown) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(b.Amounts)+1)
	for f, amt := range b.Amounts {
		if f == OtherFee {
			continue
		}
		flat[string(f)] = amt
	}

	others, hasOthersAmt := b.Amounts[OtherFee]
	switch {
	case len(b.Others) > 0:
		m := make(map[string]decimal.Decimal, len(b.Others)+1)
		for l, amt := range b.Others {
			m[l] = amt
		}
		if hasOthersAmt {
			m[OtherFee.Label()] = m[OtherFee.Label()].Add(others)
		}
		flat[othersKey] = m
	case hasOthersAmt:
		flat[othersKey] = others
	}
	return json.Marshal(flat)
}

func (b *Breakdown) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(err, "decoding fee breakdown")
	}

	*b = Breakdown{}
	for key, val := range raw {
		if key == othersKey {
			b.unmarshalOthers(val)
			continue
		}
		var amt decimal.Decimal
		if err := amt.UnmarshalJSON(val); err != nil {
			continue // not an amount (ids, labels, ...)
		}
		b.Set(Field(key), amt)
	}
	return nil
}

func (b *Breakdown) unmarshalOthers(val json.RawMessage) {
	var m map[string]decimal.Decimal
	if err := json.Unmarshal(val, &m); err == nil {
		for l, amt := range m {
			b.SetOther(l, amt)
		}
		return
	}
	var amt decimal.Decimal
	if err := amt.UnmarshalJSON(val); err == nil {
		b.Set(OtherFee, amt)
	}
}
