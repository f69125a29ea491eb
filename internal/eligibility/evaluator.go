// Package eligibility decides whether a donor may give blood right now.
//
// Manual enablement and computed eligibility are separate inputs: the staff
// flag is one of the base requirements, and nothing here mutates it.
package eligibility

import (
	"time"

	"github.com/shopspring/decimal"

	"gitlab.ozon.dev/pupkingeorgij/bloodbank/internal/domain"
)

const (
	MinAge = 18
	// MaxFirstRegistrationAge only applies when a donor is registered.
	MaxFirstRegistrationAge = 65
)

var MinWeight = decimal.NewFromInt(50)

// Reasons reported when a requirement is not met.
const (
	ReasonUnderage      = "underage"
	ReasonUnderweight   = "underweight"
	ReasonDisabled      = "manually disabled"
	ReasonWaitingPeriod = "waiting period not elapsed"
)

// Waiting periods in days.
const (
	defaultWaitingPeriod   = 90
	femaleWholeBloodPeriod = 120
	redCellsWaitingPeriod  = 180
	plasmaWaitingPeriod    = 14
	plateletsWaitingPeriod = 14
)

type Result struct {
	Eligible            bool
	BaseRequirementsMet bool
	DaysRemaining       int
	WaitingPeriod       int
	Age                 int
	Reasons             []string
}

// Evaluate is pure and never fails. history may be in any order; the most
// recent unit (by collection date, then id) selects the waiting period.
func Evaluate(donor domain.Donor, history []domain.DonationUnit, now time.Time) Result {
	res := Result{Age: Age(donor.BirthDate, now)}

	if res.Age < MinAge {
		res.Reasons = append(res.Reasons, ReasonUnderage)
	}
	if donor.Weight.LessThan(MinWeight) {
		res.Reasons = append(res.Reasons, ReasonUnderweight)
	}
	if !donor.ManuallyEnabled {
		res.Reasons = append(res.Reasons, ReasonDisabled)
	}
	res.BaseRequirementsMet = len(res.Reasons) == 0

	if last, ok := mostRecent(history); ok {
		res.WaitingPeriod = WaitingPeriod(last.Component, donor.Gender)
		res.DaysRemaining = remaining(res.WaitingPeriod, last.CollectionDate, now)
	} else if donor.LastDonationDate != nil {
		// Imported donors may carry a last donation date without unit history.
		res.WaitingPeriod = WaitingPeriod(domain.WholeBlood, donor.Gender)
		res.DaysRemaining = remaining(res.WaitingPeriod, *donor.LastDonationDate, now)
	}
	if res.DaysRemaining > 0 {
		res.Reasons = append(res.Reasons, ReasonWaitingPeriod)
	}

	res.Eligible = res.BaseRequirementsMet && res.DaysRemaining == 0
	return res
}

// WaitingPeriod returns the minimum number of days that must pass after a
// donation of the given component.
func WaitingPeriod(c domain.Component, g domain.Gender) int {
	switch c {
	case domain.WholeBlood:
		if g == domain.Female {
			return femaleWholeBloodPeriod
		}
		return defaultWaitingPeriod
	case domain.RedCells:
		return redCellsWaitingPeriod
	case domain.Plasma:
		return plasmaWaitingPeriod
	case domain.Platelets:
		return plateletsWaitingPeriod
	}
	return defaultWaitingPeriod
}

// Age counts completed years; the current year only counts once the
// birthday has been reached.
func Age(birth, now time.Time) int {
	if birth.IsZero() {
		return 0
	}
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}

// DaysBetween counts calendar days in UTC, ignoring the time of day.
func DaysBetween(from, to time.Time) int {
	f := truncateDay(from)
	t := truncateDay(to)
	return int(t.Sub(f).Hours() / 24)
}

func remaining(period int, last, now time.Time) int {
	left := period - DaysBetween(last, now)
	if left < 0 {
		return 0
	}
	return left
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func mostRecent(history []domain.DonationUnit) (domain.DonationUnit, bool) {
	if len(history) == 0 {
		return domain.DonationUnit{}, false
	}
	latest := history[0]
	for _, u := range history[1:] {
		if u.CollectionDate.After(latest.CollectionDate) ||
			(u.CollectionDate.Equal(latest.CollectionDate) && u.ID > latest.ID) {
			latest = u
		}
	}
	return latest, true
}
