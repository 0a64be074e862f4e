// Package lookback evaluates the qualifying sales window a jurisdiction's
// threshold is tested against. Each policy variant gets its own evaluator;
// evaluators consume transactions once, in ascending date order, and report
// the candidate windows to test at a given evaluation date.
package lookback

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nexcalc/nexcalc/internal/domain"
)

// Window is a measured qualifying window: the revenue total and transaction
// count to hold against the threshold. Testable is false when the policy does
// not yet have enough history to be evaluated.
type Window struct {
	Total    decimal.Decimal
	Count    int
	Testable bool
}

// Evaluator accumulates transactions and measures qualifying windows.
//
// Add must be called with transactions in non-decreasing date order, and
// Windows with the date of the transaction just added. Windows returns the
// candidate windows in the order the policy tests them; for most policies
// that is a single window.
type Evaluator interface {
	Add(tx domain.TransactionRecord)
	Windows(evalDate time.Time) []Window
}

// NewEvaluator builds the evaluator for a policy variant. The switch is the
// single dispatch point for the closed policy set.
func NewEvaluator(policy domain.LookbackPolicy) (Evaluator, error) {
	switch p := policy.(type) {
	case domain.PreviousCalendarYear:
		return &previousYearEvaluator{years: map[int]bucket{}}, nil
	case domain.CurrentOrPreviousCalendarYear:
		return &currentOrPreviousEvaluator{years: map[int]bucket{}}, nil
	case domain.RollingWindow:
		if p.Days <= 0 {
			return nil, fmt.Errorf("rolling window days must be positive, got %d", p.Days)
		}
		return &rollingEvaluator{days: p.Days}, nil
	case domain.QuarterWindow:
		if p.Quarters <= 0 {
			return nil, fmt.Errorf("quarter window length must be positive, got %d", p.Quarters)
		}
		return &quarterEvaluator{quarters: p.Quarters, buckets: map[int]bucket{}}, nil
	case domain.FixedAnnualWindow:
		if p.Day < 1 || p.Day > 31 || p.Month < time.January || p.Month > time.December {
			return nil, fmt.Errorf("fixed annual window end %02d-%02d is not a valid month/day", int(p.Month), p.Day)
		}
		return &fixedAnnualEvaluator{month: p.Month, day: p.Day}, nil
	case nil:
		return nil, fmt.Errorf("lookback policy is required")
	default:
		return nil, fmt.Errorf("unsupported lookback policy %T", policy)
	}
}

// bucket is a running revenue/count accumulator.
type bucket struct {
	total decimal.Decimal
	count int
}

func (b bucket) add(amount decimal.Decimal) bucket {
	return bucket{total: b.total.Add(amount), count: b.count + 1}
}

func (b bucket) window() Window {
	return Window{Total: b.total, Count: b.count, Testable: true}
}

// previousYearEvaluator implements PreviousCalendarYear: the window is the
// entire calendar year before the evaluation date's year.
type previousYearEvaluator struct {
	years map[int]bucket
}

func (e *previousYearEvaluator) Add(tx domain.TransactionRecord) {
	e.years[tx.Year()] = e.years[tx.Year()].add(tx.Amount)
}

func (e *previousYearEvaluator) Windows(evalDate time.Time) []Window {
	return []Window{e.years[evalDate.Year()-1].window()}
}

// currentOrPreviousEvaluator implements CurrentOrPreviousCalendarYear: the
// current year-to-date window is tested first, then the prior full year.
type currentOrPreviousEvaluator struct {
	years map[int]bucket
}

func (e *currentOrPreviousEvaluator) Add(tx domain.TransactionRecord) {
	e.years[tx.Year()] = e.years[tx.Year()].add(tx.Amount)
}

func (e *currentOrPreviousEvaluator) Windows(evalDate time.Time) []Window {
	return []Window{
		e.years[evalDate.Year()].window(),
		e.years[evalDate.Year()-1].window(),
	}
}

// rollingEvaluator implements RollingWindow with a sliding accumulator: every
// transaction is added once and evicted once, keeping the scan linear.
type rollingEvaluator struct {
	days    int
	points  []point
	left    int
	running bucket
}

type point struct {
	date   time.Time
	amount decimal.Decimal
}

func (e *rollingEvaluator) Add(tx domain.TransactionRecord) {
	e.points = append(e.points, point{date: tx.Date, amount: tx.Amount})
	e.running = e.running.add(tx.Amount)
}

func (e *rollingEvaluator) Windows(evalDate time.Time) []Window {
	// Window is (evalDate - days, evalDate]: evict anything at or before the
	// exclusive start.
	start := evalDate.AddDate(0, 0, -e.days)
	for e.left < len(e.points) && !e.points[e.left].date.After(start) {
		e.running.total = e.running.total.Sub(e.points[e.left].amount)
		e.running.count--
		e.left++
	}
	return []Window{e.running.window()}
}

// quarterEvaluator implements QuarterWindow: the N complete calendar quarters
// before the quarter containing the evaluation date. Until N quarters of
// history exist the window is reported as not testable.
type quarterEvaluator struct {
	quarters  int
	buckets   map[int]bucket
	firstDate *time.Time
}

// quarterIndex maps a date to a monotonically increasing quarter ordinal.
func quarterIndex(t time.Time) int {
	return t.Year()*4 + (int(t.Month())-1)/3
}

func (e *quarterEvaluator) Add(tx domain.TransactionRecord) {
	q := quarterIndex(tx.Date)
	e.buckets[q] = e.buckets[q].add(tx.Amount)
	if e.firstDate == nil {
		d := tx.Date
		e.firstDate = &d
	}
}

func (e *quarterEvaluator) Windows(evalDate time.Time) []Window {
	cur := quarterIndex(evalDate)
	if e.firstDate == nil || quarterIndex(*e.firstDate) > cur-e.quarters {
		// Observed history does not yet span the full window.
		return []Window{{Total: decimal.Zero, Count: 0, Testable: false}}
	}
	var sum bucket
	for q := cur - e.quarters; q < cur; q++ {
		b := e.buckets[q]
		sum.total = sum.total.Add(b.total)
		sum.count += b.count
	}
	return []Window{sum.window()}
}

// fixedAnnualEvaluator implements FixedAnnualWindow: the 12 months ending on
// the most recent configured month/day at or before the evaluation date.
// Boundaries move forward only, so prefix sums with binary-searched bounds
// keep measurement cheap without re-summing.
type fixedAnnualEvaluator struct {
	month    time.Month
	day      int
	points   []point
	prefixes []decimal.Decimal // prefixes[i] = sum of points[0..i]
}

func (e *fixedAnnualEvaluator) Add(tx domain.TransactionRecord) {
	prev := decimal.Zero
	if n := len(e.prefixes); n > 0 {
		prev = e.prefixes[n-1]
	}
	e.points = append(e.points, point{date: tx.Date, amount: tx.Amount})
	e.prefixes = append(e.prefixes, prev.Add(tx.Amount))
}

// anchor returns the most recent occurrence of the configured month/day at or
// before evalDate.
func (e *fixedAnnualEvaluator) anchor(evalDate time.Time) time.Time {
	a := time.Date(evalDate.Year(), e.month, e.day, 0, 0, 0, 0, evalDate.Location())
	if a.After(evalDate) {
		a = a.AddDate(-1, 0, 0)
	}
	return a
}

func (e *fixedAnnualEvaluator) Windows(evalDate time.Time) []Window {
	end := e.anchor(evalDate)
	start := end.AddDate(-1, 0, 0)

	// Window is (start, end]; lo is the first point after start, hi the first
	// point after end.
	lo := sort.Search(len(e.points), func(i int) bool { return e.points[i].date.After(start) })
	hi := sort.Search(len(e.points), func(i int) bool { return e.points[i].date.After(end) })
	if lo >= hi {
		return []Window{{Total: decimal.Zero, Count: 0, Testable: true}}
	}
	total := e.prefixes[hi-1]
	if lo > 0 {
		total = total.Sub(e.prefixes[lo-1])
	}
	return []Window{{Total: total, Count: hi - lo, Testable: true}}
}
