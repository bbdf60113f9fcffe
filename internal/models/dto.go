package models

import "github.com/shopspring/decimal"

// Wire DTOs. Field names are snake_case, distinct from the in-memory
// attribute names. Monetary amounts travel as decimal strings
// (shopspring/decimal marshals quoted and tolerates the legacy bare-number
// encoding on decode). Foreign keys are id strings only.

type HouseholdMemberDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Email        string    `json:"email"`
	LastModified Timestamp `json:"last_modified"`
}

type AccountDTO struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"owner_id"`
	Name           string          `json:"name"`
	Kind           string          `json:"kind"`
	Currency       string          `json:"currency"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	LastModified   Timestamp       `json:"last_modified"`
}

type BudgetCategoryDTO struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	MonthlyLimit decimal.Decimal `json:"monthly_limit"`
	Color        string          `json:"color"`
	LastModified Timestamp       `json:"last_modified"`
}

type RecurringTemplateDTO struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"account_id"`
	CategoryID   string          `json:"category_id"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Frequency    string          `json:"frequency"`
	NextDue      Timestamp       `json:"next_due"`
	LastModified Timestamp       `json:"last_modified"`
}

type TransactionDTO struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"account_id"`
	CategoryID   string          `json:"category_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Date         Timestamp       `json:"date"`
	Merchant     string          `json:"merchant"`
	Note         string          `json:"note,omitempty"`
	Cleared      bool            `json:"cleared"`
	LastModified Timestamp       `json:"last_modified"`
}

type BillLineItemDTO struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	Label         string          `json:"label"`
	Amount        decimal.Decimal `json:"amount"`
	LastModified  Timestamp       `json:"last_modified"`
}

type SavingsGoalDTO struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"account_id"`
	Name         string          `json:"name"`
	Target       decimal.Decimal `json:"target"`
	Saved        decimal.Decimal `json:"saved"`
	Deadline     *Timestamp      `json:"deadline,omitempty"`
	LastModified Timestamp       `json:"last_modified"`
}

type PayslipDTO struct {
	ID           string          `json:"id"`
	MemberID     string          `json:"member_id"`
	Employer     string          `json:"employer"`
	PeriodStart  Timestamp       `json:"period_start"`
	PeriodEnd    Timestamp       `json:"period_end"`
	Gross        decimal.Decimal `json:"gross"`
	Net          decimal.Decimal `json:"net"`
	Tax          decimal.Decimal `json:"tax"`
	LastModified Timestamp       `json:"last_modified"`
}

type PensionSnapshotDTO struct {
	ID           string          `json:"id"`
	MemberID     string          `json:"member_id"`
	Provider     string          `json:"provider"`
	Value        decimal.Decimal `json:"value"`
	AsOf         Timestamp       `json:"as_of"`
	LastModified Timestamp       `json:"last_modified"`
}

type DocumentDTO struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Title         string    `json:"title"`
	Kind          string    `json:"kind"`
	ContentHash   string    `json:"content_hash"`
	LastModified  Timestamp `json:"last_modified"`
}

type InvestmentDTO struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"account_id"`
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	Units        decimal.Decimal `json:"units"`
	CostBasis    decimal.Decimal `json:"cost_basis"`
	LastModified Timestamp       `json:"last_modified"`
}

type InvestmentTransactionDTO struct {
	ID           string          `json:"id"`
	InvestmentID string          `json:"investment_id"`
	Kind         string          `json:"kind"`
	Units        decimal.Decimal `json:"units"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Fees         decimal.Decimal `json:"fees"`
	TradeDate    Timestamp       `json:"trade_date"`
	LastModified Timestamp       `json:"last_modified"`
}
