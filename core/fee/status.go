package fee

import (
	"encoding/json"
	"strings"
)

// Status is a normalised invoice/student payment status.
type Status string

const (
	StatusUnpaid  Status = "unpaid"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
)

// NormalizeStatus lowers and trims a status received from the backend.
// "unpa" is a truncated value seen in the wild and is read as unpaid.
// Unknown values are kept (lowered) so that NormalizeStatus is idempotent.
func NormalizeStatus(s string) Status {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "unpaid", "unpa", "un-paid", "un_paid":
		return StatusUnpaid
	case "partial", "partially paid", "partially_paid":
		return StatusPartial
	case "paid":
		return StatusPaid
	}
	return Status(s)
}

func (s Status) Color() string {
	switch NormalizeStatus(string(s)) {
	case StatusPaid:
		return "green"
	case StatusPartial:
		return "yellow"
	case StatusUnpaid:
		return "red"
	}
	return "gray"
}

func (s Status) Label() string {
	switch NormalizeStatus(string(s)) {
	case StatusPaid:
		return "Paid"
	case StatusPartial:
		return "Partial"
	case StatusUnpaid:
		return "Unpaid"
	}
	return "Unknown"
}

// WireValue is the spelling the backend expects in filters.
func (s Status) WireValue() string {
	if NormalizeStatus(string(s)) == StatusUnpaid {
		return "unPaid"
	}
	return string(NormalizeStatus(string(s)))
}

func (s Status) IsKnown() bool {
	switch NormalizeStatus(string(s)) {
	case StatusPaid, StatusPartial, StatusUnpaid:
		return true
	}
	return false
}

// UnmarshalJSON normalises the status received from the backend.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = NormalizeStatus(raw)
	return nil
}
