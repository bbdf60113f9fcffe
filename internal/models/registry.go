package models

// Logical table names shared by the local store and the remote backend.
const (
	TableHouseholdMembers       = "household_members"
	TableAccounts               = "accounts"
	TableBudgetCategories       = "budget_categories"
	TableRecurringTemplates     = "recurring_templates"
	TableTransactions           = "transactions"
	TableBillLineItems          = "bill_line_items"
	TableSavingsGoals           = "savings_goals"
	TablePayslips               = "payslips"
	TablePensionSnapshots       = "pension_snapshots"
	TableDocuments              = "documents"
	TableInvestments            = "investments"
	TableInvestmentTransactions = "investment_transactions"
)

// SyncOrder is the fixed topological order for pulls. A table may reference
// rows only from tables earlier in this list, so reconciling in order
// guarantees foreign keys resolve against already-present parents.
var SyncOrder = []string{
	TableHouseholdMembers,
	TableAccounts,
	TableBudgetCategories,
	TableRecurringTemplates,
	TableTransactions,
	TableBillLineItems,
	TableSavingsGoals,
	TablePayslips,
	TablePensionSnapshots,
	TableDocuments,
	TableInvestments,
	TableInvestmentTransactions,
}

var knownTables = func() map[string]struct{} {
	m := make(map[string]struct{}, len(SyncOrder))
	for _, t := range SyncOrder {
		m[t] = struct{}{}
	}
	return m
}()

// KnownTable reports whether name is a registered sync table. Both the push
// path and the remote client reject anything outside the whitelist before it
// reaches SQL.
func KnownTable(name string) bool {
	_, ok := knownTables[name]
	return ok
}
