package fee

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/challan/core"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name   string
		b      Breakdown
		fields []Field
		want   int64
	}{
		{name: "empty", b: Breakdown{}, fields: SlipFields, want: 0},
		{
			name:   "named fields only",
			b:      NewBreakdown(map[Field]decimal.Decimal{TutionFee: d(4000), ExamFee: d(500)}),
			fields: SlipFields,
			want:   4500,
		},
		{
			name: "others are summed in",
			b: Breakdown{
				Amounts: map[Field]decimal.Decimal{TutionFee: d(4000)},
				Others:  map[string]decimal.Decimal{"Trip": d(300), "Uniform": d(1200)},
			},
			fields: SlipFields,
			want:   5500,
		},
		{
			name:   "fields outside the list are ignored",
			b:      NewBreakdown(map[Field]decimal.Decimal{TutionFee: d(4000), LabsFee: d(700)}),
			fields: SlipFields,
			want:   4000,
		},
		{
			name:   "student others amount",
			b:      NewBreakdown(map[Field]decimal.Decimal{TutionFee: d(3000), OtherFee: d(250), ExtraFee: d(50)}),
			fields: StudentFields,
			want:   3300,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotal(tt.b, tt.fields)
			if !got.Total.Equal(d(tt.want)) {
				t.Errorf("ComputeTotal() = %v, want %v", got.Total, tt.want)
			}

			// sum invariant
			sum := decimal.Zero
			for _, f := range tt.fields {
				sum = sum.Add(got.ByField[f])
			}
			if !sum.Add(got.Others).Equal(got.Total) {
				t.Errorf("ByField + Others = %v, Total %v", sum.Add(got.Others), got.Total)
			}
			assert.Len(t, got.ByField, len(tt.fields))
		})
	}
}

func TestDueDateTotals(t *testing.T) {
	tests := []struct {
		name       string
		charges    Breakdown
		wantWithin int64
		wantAfter  int64
	}{
		{
			name:       "with late fee",
			charges:    NewBreakdown(map[Field]decimal.Decimal{TutionFee: d(4000), ExamFee: d(500), LateFeeFine: d(100)}),
			wantWithin: 4500,
			wantAfter:  4600,
		},
		{
			name:       "without late fee",
			charges:    NewBreakdown(map[Field]decimal.Decimal{TutionFee: d(4000), Arrears: d(1000)}),
			wantWithin: 5000,
			wantAfter:  5000,
		},
		{
			name: "others count within due date",
			charges: Breakdown{
				Amounts: map[Field]decimal.Decimal{LateFeeFine: d(200)},
				Others:  map[string]decimal.Decimal{"Trip": d(300)},
			},
			wantWithin: 300,
			wantAfter:  500,
		},
		{
			name:       "plain others amount",
			charges:    NewBreakdown(map[Field]decimal.Decimal{TutionFee: d(4000), OtherFee: d(300), LateFeeFine: d(100)}),
			wantWithin: 4300,
			wantAfter:  4400,
		},
		{name: "empty", charges: Breakdown{}, wantWithin: 0, wantAfter: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			within := TotalWithinDueDate(tt.charges)
			after := TotalAfterDueDate(tt.charges)
			assert.True(t, within.Equal(d(tt.wantWithin)), "within = %v", within)
			assert.True(t, after.Equal(d(tt.wantAfter)), "after = %v", after)
			assert.True(t, after.Equal(within.Add(tt.charges.Get(LateFeeFine))))
		})
	}
}

func TestComputeTotal_decodedOthersAmount(t *testing.T) {
	var b Breakdown
	require.NoError(t, json.Unmarshal([]byte(`{"tutionFee":4000,"others":300,"lateFeeFine":100}`), &b))

	assert.True(t, TotalWithinDueDate(b).Equal(d(4300)), "within = %v", TotalWithinDueDate(b))
	assert.True(t, TotalAfterDueDate(b).Equal(d(4400)), "after = %v", TotalAfterDueDate(b))
	assert.True(t, ComputeTotal(b, SlipFields).Total.Equal(d(4400)))
	assert.True(t, ComputeTotal(b, BulkFields).Others.Equal(d(300)))
}

func TestCheckNonNegative(t *testing.T) {
	tests := []struct {
		name    string
		b       Breakdown
		fields  []Field
		wantErr string
	}{
		{name: "valid", b: NewBreakdown(map[Field]decimal.Decimal{TutionFee: d(4000)}), fields: SlipFields},
		{
			name:    "negative field",
			b:       NewBreakdown(map[Field]decimal.Decimal{ExamFee: d(-1)}),
			fields:  BulkFields,
			wantErr: "feeBreakdown.examFee: amount cannot be negative",
		},
		{
			name:    "negative others entry",
			b:       Breakdown{Others: map[string]decimal.Decimal{"Discount": d(-5000)}},
			fields:  BulkFields,
			wantErr: "feeBreakdown.others.Discount: amount cannot be negative",
		},
		{
			name:    "negative plain others amount",
			b:       NewBreakdown(map[Field]decimal.Decimal{OtherFee: d(-10)}),
			fields:  SlipFields,
			wantErr: "feeBreakdown.others: amount cannot be negative",
		},
		{name: "fields outside the list are ignored", b: NewBreakdown(map[Field]decimal.Decimal{LabsFee: d(-1)}), fields: SlipFields},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckNonNegative(tt.b, tt.fields, "feeBreakdown")
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, core.IsValidationError(err))
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestBreakdownJSON(t *testing.T) {
	var b Breakdown
	data := []byte(`{"tutionFee": 4000, "examFee": "500", "studentId": "S-1", "lateFeeFine": null,
		"others": {"Trip": 300}}`)
	require.NoError(t, json.Unmarshal(data, &b))

	assert.True(t, b.Get(TutionFee).Equal(d(4000)))
	assert.True(t, b.Get(ExamFee).Equal(d(500)))
	assert.True(t, b.Get(LateFeeFine).IsZero())
	assert.True(t, b.Get(Arrears).IsZero())
	assert.Equal(t, []string{"Trip"}, b.OtherLabels())
	assert.True(t, ComputeTotal(b, SlipFields).Total.Equal(d(4800)))

	t.Run("others as a plain amount", func(t *testing.T) {
		var sb Breakdown
		require.NoError(t, json.Unmarshal([]byte(`{"tutionFee": 100, "others": 20}`), &sb))
		assert.True(t, sb.Get(OtherFee).Equal(d(20)))
		assert.Empty(t, sb.Others)
	})

	t.Run("amounts are encoded as numbers", func(t *testing.T) {
		out, err := json.Marshal(NewBreakdown(map[Field]decimal.Decimal{TutionFee: d(4000)}))
		require.NoError(t, err)
		assert.JSONEq(t, `{"tutionFee": 4000}`, string(out))
	})
}

func TestBreakdownMerge(t *testing.T) {
	a := Breakdown{Amounts: map[Field]decimal.Decimal{TutionFee: d(1000)}, Others: map[string]decimal.Decimal{"Trip": d(10)}}
	b := Breakdown{Amounts: map[Field]decimal.Decimal{TutionFee: d(500), Arrears: d(200)}, Others: map[string]decimal.Decimal{"Trip": d(5)}}

	m := a.Merge(b)
	assert.True(t, m.Get(TutionFee).Equal(d(1500)))
	assert.True(t, m.Get(Arrears).Equal(d(200)))
	assert.True(t, m.Others["Trip"].Equal(d(15)))
	assert.True(t, a.Get(TutionFee).Equal(d(1000)), "Merge must not modify its receiver")
}
