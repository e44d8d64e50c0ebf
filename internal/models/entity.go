package models

import "sort"

// Entity names for the five synchronized data kinds.
const (
	EntityAccounts       = "accounts"
	EntityAccountHistory = "account_history"
	EntityCategories     = "categories"
	EntityTransactions   = "transactions"
	EntityBudgets        = "budgets"
)

// EntityRunOrder is the dependency order entities are synced in.
// account_history must always run after accounts (needs account IDs to exist).
var EntityRunOrder = []string{
	EntityAccounts,
	EntityAccountHistory,
	EntityCategories,
	EntityTransactions,
	EntityBudgets,
}

var entityTables = map[string]string{
	EntityAccounts:       "accounts",
	EntityAccountHistory: "account_history",
	EntityCategories:     "categories",
	EntityTransactions:   "transactions",
	EntityBudgets:        "budgets",
}

// EntityLabels maps entity names to display labels for the dashboard.
var EntityLabels = map[string]string{
	EntityAccounts:       "Accounts",
	EntityAccountHistory: "Account History",
	EntityCategories:     "Categories",
	EntityTransactions:   "Transactions",
	EntityBudgets:        "Budgets",
}

// EntityTable returns the storage table for an entity name.
func EntityTable(entity string) (string, bool) {
	table, ok := entityTables[entity]
	return table, ok
}

// OrderEntities returns the selected entities sorted into run order.
// Unknown names sort last, keeping their original relative order.
func OrderEntities(selected []string) []string {
	orderIndex := make(map[string]int, len(EntityRunOrder))
	for i, e := range EntityRunOrder {
		orderIndex[e] = i
	}

	ordered := make([]string, len(selected))
	copy(ordered, selected)
	sort.SliceStable(ordered, func(i, j int) bool {
		ii, ok := orderIndex[ordered[i]]
		if !ok {
			ii = len(EntityRunOrder)
		}
		jj, ok := orderIndex[ordered[j]]
		if !ok {
			jj = len(EntityRunOrder)
		}
		return ii < jj
	})
	return ordered
}

// UnknownEntities returns the names in selected that are not registered entities.
func UnknownEntities(selected []string) []string {
	var unknown []string
	for _, e := range selected {
		if _, ok := entityTables[e]; !ok {
			unknown = append(unknown, e)
		}
	}
	return unknown
}
