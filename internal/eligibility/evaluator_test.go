package eligibility

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/domain"
)

var day0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func donor(age int, weight int64, g domain.Gender) domain.Donor {
	return domain.Donor{
		ID:              1,
		BirthDate:       day0.AddDate(-age, 0, 0),
		Gender:          g,
		Weight:          decimal.NewFromInt(weight),
		BloodType:       domain.ONegative,
		ManuallyEnabled: true,
	}
}

func unit(id int64, c domain.Component, at time.Time) domain.DonationUnit {
	return domain.DonationUnit{ID: id, Component: c, CollectionDate: at}
}

func TestEvaluate_BaseRequirements(t *testing.T) {
	tests := []struct {
		name       string
		donor      domain.Donor
		wantReason string
	}{
		{name: "underage", donor: donor(17, 70, domain.Male), wantReason: ReasonUnderage},
		{name: "underweight", donor: donor(30, 49, domain.Male), wantReason: ReasonUnderweight},
		{
			name: "manually disabled",
			donor: func() domain.Donor {
				d := donor(30, 70, domain.Female)
				d.ManuallyEnabled = false
				return d
			}(),
			wantReason: ReasonDisabled,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := Evaluate(tc.donor, nil, day0)
			assert.False(t, res.Eligible)
			assert.False(t, res.BaseRequirementsMet)
			assert.Contains(t, res.Reasons, tc.wantReason)
			assert.Equal(t, 0, res.DaysRemaining)
		})
	}
}

func TestEvaluate_BoundaryValuesAreEligible(t *testing.T) {
	d := donor(18, 50, domain.Male)
	res := Evaluate(d, nil, day0)
	assert.True(t, res.Eligible)
	assert.Equal(t, 18, res.Age)

	d.Weight = decimal.RequireFromString("49.99")
	assert.False(t, Evaluate(d, nil, day0).Eligible)
}

func TestEvaluate_WaitingPeriods(t *testing.T) {
	tests := []struct {
		component domain.Component
		gender    domain.Gender
		period    int
	}{
		{domain.WholeBlood, domain.Male, 90},
		{domain.WholeBlood, domain.Female, 120},
		{domain.WholeBlood, domain.Other, 90},
		{domain.RedCells, domain.Female, 180},
		{domain.Plasma, domain.Male, 14},
		{domain.Platelets, domain.Female, 14},
		{domain.Component("cryo"), domain.Male, 90},
	}

	for _, tc := range tests {
		t.Run(string(tc.component)+"/"+string(tc.gender), func(t *testing.T) {
			d := donor(30, 70, tc.gender)
			history := []domain.DonationUnit{unit(1, tc.component, day0)}

			res := Evaluate(d, history, day0.AddDate(0, 0, 10))
			assert.Equal(t, tc.period, res.WaitingPeriod)
			assert.Equal(t, max(0, tc.period-10), res.DaysRemaining)
			assert.Equal(t, tc.period <= 10, res.Eligible)

			res = Evaluate(d, history, day0.AddDate(0, 0, tc.period))
			assert.Equal(t, 0, res.DaysRemaining)
			assert.True(t, res.Eligible)
		})
	}
}

func TestEvaluate_MostRecentDonationSelectsPeriod(t *testing.T) {
	d := donor(40, 80, domain.Male)
	history := []domain.DonationUnit{
		unit(2, domain.Plasma, day0.AddDate(0, 0, -5)),
		unit(1, domain.RedCells, day0.AddDate(0, 0, -100)),
	}

	res := Evaluate(d, history, day0)
	assert.Equal(t, 14, res.WaitingPeriod)
	assert.Equal(t, 9, res.DaysRemaining)
	assert.False(t, res.Eligible)
	assert.Contains(t, res.Reasons, ReasonWaitingPeriod)
}

func TestEvaluate_LegacyLastDonationDate(t *testing.T) {
	d := donor(40, 80, domain.Female)
	last := day0.AddDate(0, 0, -20)
	d.LastDonationDate = &last

	res := Evaluate(d, nil, day0)
	assert.Equal(t, 100, res.DaysRemaining)
}

func TestEvaluate_WholeBloodWaitElapsesAfter90Days(t *testing.T) {
	d := donor(30, 70, domain.Male)
	assert.True(t, Evaluate(d, nil, day0).Eligible)

	history := []domain.DonationUnit{unit(1, domain.WholeBlood, day0)}

	res := Evaluate(d, history, day0)
	assert.False(t, res.Eligible)
	assert.Equal(t, 90, res.DaysRemaining)

	res = Evaluate(d, history, day0.AddDate(0, 0, 89))
	assert.False(t, res.Eligible)
	assert.Equal(t, 1, res.DaysRemaining)

	res = Evaluate(d, history, day0.AddDate(0, 0, 90))
	assert.True(t, res.Eligible)
	assert.Equal(t, 0, res.DaysRemaining)
}

func TestEvaluate_NeverEligibleWhenAnyGuardFails(t *testing.T) {
	for age := 16; age <= 20; age++ {
		for _, w := range []int64{45, 50, 60} {
			for _, enabled := range []bool{true, false} {
				for _, elapsed := range []int{0, 30, 120} {
					d := donor(age, w, domain.Male)
					d.ManuallyEnabled = enabled
					history := []domain.DonationUnit{unit(1, domain.WholeBlood, day0)}

					res := Evaluate(d, history, day0.AddDate(0, 0, elapsed))
					if age < MinAge || w < 50 || !enabled || res.DaysRemaining > 0 {
						assert.False(t, res.Eligible, "age=%d weight=%d enabled=%v elapsed=%d", age, w, enabled, elapsed)
					}
				}
			}
		}
	}
}

func TestAge(t *testing.T) {
	birth := time.Date(2000, 6, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 24, Age(birth, time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 25, Age(birth, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 24, Age(birth, time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, Age(time.Time{}, day0))
}

func TestDaysBetweenIgnoresTimeOfDay(t *testing.T) {
	from := time.Date(2025, 1, 1, 23, 59, 0, 0, time.UTC)
	to := time.Date(2025, 1, 2, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysBetween(from, to))
}
