package fee

// Field is the JSON key of a named fee component.
type Field string

const (
	TutionFee        Field = "tutionFee"
	LabsFee          Field = "labsFee"
	LabFee           Field = "labFee"
	ExamFee          Field = "examFee"
	ExamFeeTotal     Field = "examFeeTotal"
	KarateFee        Field = "karateFee"
	KarateFeeTotal   Field = "karateFeeTotal"
	AdmissionFee     Field = "admissionFee"
	AdmissionTotal   Field = "admissionFeeTotal"
	RegistrationFee  Field = "registrationFee"
	AnnualCharges    Field = "annualCharges"
	AnnualTotal      Field = "annualChargesTotal"
	BooksCharges     Field = "booksCharges"
	ArtCraftFee      Field = "artCraftFee"
	LateFeeFine      Field = "lateFeeFine"
	AbsentFine       Field = "absentFine"
	MiscellaneousFee Field = "miscellaneousFee"
	Arrears          Field = "arrears"
	ExtraFee         Field = "extraFee"
	OtherFee         Field = "others"
)

// othersKey holds the open-ended label->amount map of a Breakdown.
const othersKey = "others"

var (
	// StudentFields are the fee components of a student record (create-student form).
	// On a student record `others` is a plain amount, not a map.
	StudentFields = []Field{
		TutionFee, LabsFee, ExamFeeTotal, KarateFeeTotal, AdmissionTotal, RegistrationFee,
		AnnualTotal, LateFeeFine, ExtraFee, OtherFee,
	}

	// SlipFields are the categories of a single fee slip.
	SlipFields = []Field{
		TutionFee, BooksCharges, RegistrationFee, ExamFee, LabFee, ArtCraftFee, KarateFee,
		AdmissionFee, LateFeeFine, AnnualCharges, AbsentFine, MiscellaneousFee, Arrears,
	}

	// BulkFields are the common charges applied to every student of a bulk challan;
	// arrears come from each student's own balance.
	BulkFields = without(SlipFields, Arrears)

	// PaymentFields are the categories a payment can be split into.
	PaymentFields = SlipFields

	// ChargeFields are the charges payable within the due date (everything but the late fine).
	ChargeFields = without(SlipFields, LateFeeFine)

	labels = map[Field]string{
		TutionFee:        "Tuition Fee",
		LabsFee:          "Labs Fee",
		LabFee:           "Lab Fee",
		ExamFee:          "Exam Fee",
		ExamFeeTotal:     "Exam Fee",
		KarateFee:        "Karate Fee",
		KarateFeeTotal:   "Karate Fee",
		AdmissionFee:     "Admission Fee",
		AdmissionTotal:   "Admission Fee",
		RegistrationFee:  "Registration Fee",
		AnnualCharges:    "Annual Charges",
		AnnualTotal:      "Annual Charges",
		BooksCharges:     "Books Charges",
		ArtCraftFee:      "Art & Craft Fee",
		LateFeeFine:      "Late Fee Fine",
		AbsentFine:       "Absent Fine",
		MiscellaneousFee: "Miscellaneous Fee",
		Arrears:          "Arrears",
		ExtraFee:         "Extra Fee",
		OtherFee:         "Others",
	}
)

// Label is the printable name of the field.
func (f Field) Label() string {
	if l, ok := labels[f]; ok {
		return l
	}
	return string(f)
}

func without(fields []Field, excluded Field) []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if f != excluded {
			out = append(out, f)
		}
	}
	return out
}
