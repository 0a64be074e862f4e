package domain

import (
	"fmt"
	"time"
)

// LookbackPolicy is the closed set of window rules a jurisdiction may use when
// testing its economic-nexus threshold. The variants are distinct types rather
// than a string flag so evaluator dispatch is checked at compile time; adding
// a policy means adding a type here and a case to the evaluator constructor.
type LookbackPolicy interface {
	policyVariant()
	String() string
}

// PreviousCalendarYear tests the full calendar year before the evaluation
// date's year.
type PreviousCalendarYear struct{}

// CurrentOrPreviousCalendarYear tests the current year-to-date total first and
// falls back to the prior full year.
type CurrentOrPreviousCalendarYear struct{}

// RollingWindow tests the trailing Days-day window ending at the evaluation
// date (exclusive start, inclusive end).
type RollingWindow struct {
	Days int
}

// QuarterWindow tests the Quarters complete calendar quarters immediately
// preceding the quarter containing the evaluation date. The threshold is not
// testable until that much history exists.
type QuarterWindow struct {
	Quarters int
}

// FixedAnnualWindow tests the 12 months ending on the configured month/day
// (for example Sept 30), independent of calendar-year boundaries. Used for
// fiscal-year jurisdictions and for client-supplied fiscal year ends.
type FixedAnnualWindow struct {
	Month time.Month
	Day   int
}

func (PreviousCalendarYear) policyVariant()          {}
func (CurrentOrPreviousCalendarYear) policyVariant() {}
func (RollingWindow) policyVariant()                 {}
func (QuarterWindow) policyVariant()                 {}
func (FixedAnnualWindow) policyVariant()             {}

func (PreviousCalendarYear) String() string { return "previous_calendar_year" }

func (CurrentOrPreviousCalendarYear) String() string {
	return "current_or_previous_calendar_year"
}

func (p RollingWindow) String() string {
	return fmt.Sprintf("rolling_window(%dd)", p.Days)
}

func (p QuarterWindow) String() string {
	return fmt.Sprintf("quarter_window(%dq)", p.Quarters)
}

func (p FixedAnnualWindow) String() string {
	return fmt.Sprintf("fixed_annual_window(%02d-%02d)", int(p.Month), p.Day)
}
