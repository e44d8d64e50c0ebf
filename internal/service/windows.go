package service

import "time"

const (
	// TransactionsOverlapDays is how far the incremental transactions
	// window reaches back before the last sync, to catch late-arriving
	// or edited transactions.
	TransactionsOverlapDays = 3

	// BudgetLookbackMonths is the trailing window refetched for budgets
	// on every run.
	BudgetLookbackMonths = 12
)

// TransactionsWindowStart computes the incremental lower bound for a
// transactions fetch: 3 days before the last recorded sync. Full refreshes
// and never-synced states have no lower bound.
func TransactionsWindowStart(lastSync *time.Time, fullRefresh bool) *time.Time {
	if fullRefresh || lastSync == nil {
		return nil
	}
	start := lastSync.AddDate(0, 0, -TransactionsOverlapDays)
	return &start
}

// BudgetWindow returns the trailing budget window: the first of the same
// month one year prior through the first of the current month. Budgets are
// always refetched over this window regardless of full refresh.
func BudgetWindow(today time.Time) (start, end time.Time) {
	start = time.Date(today.Year()-1, today.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, end
}
