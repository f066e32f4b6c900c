package invoice_test

import "github.com/trezcool/challan/core/voucher"

func voucherSchool() voucher.School { return voucher.School{Name: "Test School"} }
