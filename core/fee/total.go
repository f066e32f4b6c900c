package fee

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/trezcool/challan/core"
)

// Total is the result of summing a Breakdown over a list of recognised fields.
type Total struct {
	Total   decimal.Decimal
	ByField map[Field]decimal.Decimal
	Others  decimal.Decimal
}

// ComputeTotal sums the given fields of b (missing fields count as 0) plus every `others` amount.
// A plain `others` amount counts with the others unless the list names OtherFee itself.
// Fields of b that are not in the list are ignored.
func ComputeTotal(b Breakdown, fields []Field) Total {
	t := Total{ByField: make(map[Field]decimal.Decimal, len(fields))}
	for _, f := range fields {
		amt := b.Get(f)
		t.ByField[f] = amt
		t.Total = t.Total.Add(amt)
	}
	for _, amt := range b.Others {
		t.Others = t.Others.Add(amt)
	}
	if !slices.Contains(fields, OtherFee) {
		t.Others = t.Others.Add(b.Get(OtherFee))
	}
	t.Total = t.Total.Add(t.Others)
	return t
}

// TotalWithinDueDate is what is payable up to the due date: every charge but the late fee fine.
func TotalWithinDueDate(charges Breakdown) decimal.Decimal {
	return ComputeTotal(charges, ChargeFields).Total
}

// TotalAfterDueDate always equals TotalWithinDueDate plus the late fee fine.
func TotalAfterDueDate(charges Breakdown) decimal.Decimal {
	return TotalWithinDueDate(charges).Add(charges.Get(LateFeeFine))
}

// CheckNonNegative rejects negative amounts among fields, the plain `others` amount and the others map.
// Field errors are named after prefix, e.g. "feeBreakdown.others.Trip".
func CheckNonNegative(b Breakdown, fields []Field, prefix string) error {
	var flds []core.FieldError
	negative := func(name string) {
		flds = append(flds, core.FieldError{Field: prefix + "." + name, Error: "amount cannot be negative"})
	}

	for _, f := range fields {
		if b.Get(f).IsNegative() {
			negative(string(f))
		}
	}
	if !slices.Contains(fields, OtherFee) && b.Get(OtherFee).IsNegative() {
		negative(string(OtherFee))
	}
	for _, l := range b.OtherLabels() {
		if b.Others[l].IsNegative() {
			negative(othersKey + "." + l)
		}
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}
