package inmem

import (
	"github.com/shopspring/decimal"

	"github.com/trezcool/challan/core/campus"
	"github.com/trezcool/challan/core/fee"
	"github.com/trezcool/challan/core/invoice"
	"github.com/trezcool/challan/core/student"
	"github.com/trezcool/challan/core/user"
)

// Demo accounts created by Seed.
const (
	DemoAdminEmail      = "admin@challan.local"
	DemoAccountantEmail = "accountant@challan.local"
	DemoPassword        = "demo"
)

// Seed fills db with a campus, two staff accounts, a few students and one invoice.
func Seed(db *DB) {
	c := db.AddCampus(campus.Campus{ID: "main", Name: "Main Campus", Address: "1 School Road", Phone: "042-000000"})
	db.AddUser(user.User{ID: "u-admin", Name: "Admin", Email: DemoAdminEmail, Role: user.RoleAdmin, CampusID: c.ID}, DemoPassword)
	db.AddUser(user.User{ID: "u-accountant", Name: "Accountant", Email: DemoAccountantEmail, Role: user.RoleAccountant, CampusID: c.ID}, DemoPassword)

	d := decimal.NewFromInt
	students := []student.Student{
		{ID: "S-001", Name: "Ali", FatherName: "Khan", ClassName: "5", Section: "A", Session: "2024-2025"},
		{ID: "S-002", Name: "Sara", FatherName: "Ahmed", ClassName: "5", Section: "B", Session: "2024-2025"},
		{ID: "S-003", Name: "Omar", FatherName: "Farooq", ClassName: "6", Section: "A", Session: "2024-2025"},
	}
	for _, s := range students {
		s.CampusID = c.ID
		s.CampusName = c.Name
		s.Fees = fee.NewBreakdown(map[fee.Field]decimal.Decimal{fee.TutionFee: d(4000), fee.ExamFeeTotal: d(500)})
		s.AllTotal = s.Total()
		s.CurBalance = s.AllTotal
		s.Status = fee.StatusUnpaid
		db.AddStudent(s)
	}

	db.AddInvoice(invoice.Invoice{
		ID:               "inv-1",
		StudentID:        "S-001",
		StudentName:      "Ali",
		ClassName:        "5",
		FeeMonth:         "2025-01",
		TotalFee:         d(4500),
		RemainingBalance: d(4500),
		Status:           fee.StatusUnpaid,
	}, fee.NewBreakdown(map[fee.Field]decimal.Decimal{
		fee.TutionFee:   d(4000),
		fee.ExamFee:     d(500),
		fee.LateFeeFine: d(100),
	}))
}
