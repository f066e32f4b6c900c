package student

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/fee"
	"github.com/trezcool/challan/core/voucher"
)

// Student is a student record with its flat fee components and server-computed aggregates.
type Student struct {
	ID         string          `json:"studentId"`
	Name       string          `json:"studentName"`
	FatherName string          `json:"fatherName"`
	ClassName  string          `json:"className"`
	Section    string          `json:"section"`
	Session    string          `json:"session"`
	CampusID   string          `json:"campusId"`
	CampusName string          `json:"campusName,omitempty"`
	AllTotal   decimal.Decimal `json:"allTotal"`
	FeePaid    decimal.Decimal `json:"feePaid"`
	CurBalance decimal.Decimal `json:"curBalance"`
	PrevBal    decimal.Decimal `json:"prevBal"`
	Status     fee.Status      `json:"paymentStatus,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`

	// Fees holds the named fee components (StudentFields); they are flat in JSON.
	Fees fee.Breakdown `json:"-"`
}

type studentAlias Student

func (s *Student) UnmarshalJSON(data []byte) error {
	var alias studentAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var all fee.Breakdown
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	alias.Fees = fee.Breakdown{Others: all.Others}
	for _, f := range fee.StudentFields {
		if amt, ok := all.Amounts[f]; ok {
			alias.Fees.Set(f, amt)
		}
	}
	*s = Student(alias)
	return nil
}

func (s Student) MarshalJSON() ([]byte, error) {
	return flatten(studentAlias(s), s.Fees)
}

// Total is the sum of the student fee components; the backend's AllTotal should match it.
func (s Student) Total() decimal.Decimal {
	return fee.ComputeTotal(s.Fees, fee.StudentFields).Total
}

// PaymentStatus is the status sent by the backend, or derived from the balances when absent.
func (s Student) PaymentStatus() fee.Status {
	if s.Status != "" {
		return s.Status
	}
	switch {
	case s.CurBalance.LessThanOrEqual(decimal.Zero) && s.AllTotal.IsPositive():
		return fee.StatusPaid
	case s.FeePaid.IsPositive():
		return fee.StatusPartial
	}
	return fee.StatusUnpaid
}

// NewStudent is the create/update student form.
type NewStudent struct {
	ID         string          `json:"studentId,omitempty"`
	Name       string          `json:"studentName" validate:"notblank"`
	FatherName string          `json:"fatherName" validate:"notblank"`
	ClassName  string          `json:"className" validate:"notblank"`
	Section    string          `json:"section"`
	Session    string          `json:"session"`
	CampusID   string          `json:"campusId"`
	AllTotal   decimal.Decimal `json:"allTotal"`
	Fees       fee.Breakdown   `json:"-"`
}

type newStudentAlias NewStudent

func (ns *NewStudent) UnmarshalJSON(data []byte) error {
	var alias newStudentAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	if err := json.Unmarshal(data, &alias.Fees); err != nil {
		return err
	}
	fees := fee.Breakdown{Others: alias.Fees.Others}
	for _, f := range fee.StudentFields {
		if amt, ok := alias.Fees.Amounts[f]; ok {
			fees.Set(f, amt)
		}
	}
	alias.Fees = fees
	*ns = NewStudent(alias)
	return nil
}

func (ns NewStudent) MarshalJSON() ([]byte, error) {
	return flatten(newStudentAlias(ns), ns.Fees)
}

// Validate cleans the form, rejects blank identity fields and negative amounts,
// then computes AllTotal from the fee components.
func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.FatherName = core.CleanString(ns.FatherName)
	ns.ClassName = core.CleanString(ns.ClassName)
	ns.Section = core.CleanString(ns.Section)
	ns.Session = core.CleanString(ns.Session)

	if err := core.Validate.Struct(ns); err != nil {
		return err
	}

	var flds []core.FieldError
	for _, f := range fee.StudentFields {
		if ns.Fees.Get(f).IsNegative() {
			flds = append(flds, core.FieldError{Field: string(f), Error: "amount cannot be negative"})
		}
	}
	for _, l := range ns.Fees.OtherLabels() {
		if ns.Fees.Others[l].IsNegative() {
			flds = append(flds, core.FieldError{Field: "others." + l, Error: "amount cannot be negative"})
		}
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}

	ns.AllTotal = fee.ComputeTotal(ns.Fees, fee.StudentFields).Total
	return nil
}

// Filter narrows a fetched student list.
type Filter struct {
	Search    string     `query:"search"`
	ClassName string     `query:"class"`
	Status    fee.Status `query:"status"`
}

func (f *Filter) Clean() {
	f.Search = core.CleanString(f.Search, true /* lower */)
	f.ClassName = core.CleanString(f.ClassName)
	f.Status = fee.NormalizeStatus(string(f.Status))
}

func (f Filter) Match(s Student) bool {
	if f.ClassName != "" && !strings.EqualFold(s.ClassName, f.ClassName) {
		return false
	}
	if f.Status != "" && s.PaymentStatus() != f.Status {
		return false
	}
	if f.Search != "" {
		hay := strings.ToLower(strings.Join([]string{s.ID, s.Name, s.FatherName}, " "))
		if !strings.Contains(hay, f.Search) {
			return false
		}
	}
	return true
}

// Apply returns the students matching f, keeping their order.
func (f Filter) Apply(students []Student) []Student {
	out := make([]Student, 0, len(students))
	for _, s := range students {
		if f.Match(s) {
			out = append(out, s)
		}
	}
	return out
}

// UploadResult is the backend summary of a fee CSV import.
type UploadResult struct {
	Inserted int      `json:"inserted"`
	Updated  int      `json:"updated"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// flatten merges the JSON object of v with the fee components.
func flatten(v interface{}, fees fee.Breakdown) ([]byte, error) {
	base, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(base, &out); err != nil {
		return nil, err
	}
	feesJSON, err := json.Marshal(fees)
	if err != nil {
		return nil, err
	}
	var feeMap map[string]json.RawMessage
	if err := json.Unmarshal(feesJSON, &feeMap); err != nil {
		return nil, err
	}
	for k, v := range feeMap {
		out[k] = v
	}
	return json.Marshal(out)
}

// VoucherStudent is the identity block printed on a challan.
func (s Student) VoucherStudent() voucher.Student {
	return voucher.Student{
		ID:         s.ID,
		Name:       s.Name,
		FatherName: s.FatherName,
		ClassName:  s.ClassName,
		Section:    s.Section,
		Campus:     s.CampusName,
	}
}
