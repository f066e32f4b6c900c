package voucher

import (
	"fmt"
	"strings"
)

// CopyType is the physical copy a voucher is printed for.
type CopyType string

const (
	CopyStudent CopyType = "STUDENT COPY"
	CopySchool  CopyType = "SCHOOL/OFFICE COPY"
	CopyBank    CopyType = "BANK COPY"
)

var AllCopies = []CopyType{CopyStudent, CopySchool, CopyBank}

// ParseCopies reads a comma separated list of copies, e.g. "student,bank".
// An empty list means all copies.
func ParseCopies(s string) ([]CopyType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AllCopies, nil
	}

	copies := make([]CopyType, 0, len(AllCopies))
	seen := make(map[CopyType]bool, len(AllCopies))
	for _, part := range strings.Split(s, ",") {
		var ct CopyType
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "student":
			ct = CopyStudent
		case "school", "office":
			ct = CopySchool
		case "bank":
			ct = CopyBank
		default:
			return nil, fmt.Errorf("unknown copy %q (want student, school or bank)", part)
		}
		if !seen[ct] {
			seen[ct] = true
			copies = append(copies, ct)
		}
	}
	return copies, nil
}
