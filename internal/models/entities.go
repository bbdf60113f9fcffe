package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Local entity models. IDs are client-generated UUID strings that are never
// reassigned; LastModified is bumped on every local mutation and is the only
// signal used for conflict resolution. Relationships are id references, not
// embedded objects. The JSON tags below define the on-device storage form;
// the wire form lives in the DTOs.

type HouseholdMember struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Email        string    `json:"email"`
	LastModified time.Time `json:"lastModified"`
}

type Account struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"ownerId"`
	Name           string          `json:"name"`
	Kind           string          `json:"kind"` // checking, savings, credit, pension, brokerage
	Currency       string          `json:"currency"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	LastModified   time.Time       `json:"lastModified"`
}

type BudgetCategory struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	MonthlyLimit decimal.Decimal `json:"monthlyLimit"`
	Color        string          `json:"color"`
	LastModified time.Time       `json:"lastModified"`
}

type RecurringTemplate struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"accountId"`
	CategoryID   string          `json:"categoryId"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Frequency    string          `json:"frequency"` // weekly, monthly, yearly
	NextDue      time.Time       `json:"nextDue"`
	LastModified time.Time       `json:"lastModified"`
}

type Transaction struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"accountId"`
	CategoryID   string          `json:"categoryId,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Date         time.Time       `json:"date"`
	Merchant     string          `json:"merchant"`
	Note         string          `json:"note,omitempty"`
	Cleared      bool            `json:"cleared"`
	LastModified time.Time       `json:"lastModified"`
}

type BillLineItem struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transactionId"`
	Label         string          `json:"label"`
	Amount        decimal.Decimal `json:"amount"`
	LastModified  time.Time       `json:"lastModified"`
}

type SavingsGoal struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"accountId"`
	Name         string          `json:"name"`
	Target       decimal.Decimal `json:"target"`
	Saved        decimal.Decimal `json:"saved"`
	Deadline     *time.Time      `json:"deadline,omitempty"`
	LastModified time.Time       `json:"lastModified"`
}

type Payslip struct {
	ID           string          `json:"id"`
	MemberID     string          `json:"memberId"`
	Employer     string          `json:"employer"`
	PeriodStart  time.Time       `json:"periodStart"`
	PeriodEnd    time.Time       `json:"periodEnd"`
	Gross        decimal.Decimal `json:"gross"`
	Net          decimal.Decimal `json:"net"`
	Tax          decimal.Decimal `json:"tax"`
	LastModified time.Time       `json:"lastModified"`
}

type PensionSnapshot struct {
	ID           string          `json:"id"`
	MemberID     string          `json:"memberId"`
	Provider     string          `json:"provider"`
	Value        decimal.Decimal `json:"value"`
	AsOf         time.Time       `json:"asOf"`
	LastModified time.Time       `json:"lastModified"`
}

type Document struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transactionId,omitempty"`
	Title         string    `json:"title"`
	Kind          string    `json:"kind"` // receipt, statement, payslip_scan
	ContentHash   string    `json:"contentHash"`
	LastModified  time.Time `json:"lastModified"`
}

type Investment struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"accountId"`
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	Units        decimal.Decimal `json:"units"`
	CostBasis    decimal.Decimal `json:"costBasis"`
	LastModified time.Time       `json:"lastModified"`
}

type InvestmentTransaction struct {
	ID           string          `json:"id"`
	InvestmentID string          `json:"investmentId"`
	Kind         string          `json:"kind"` // buy, sell, dividend
	Units        decimal.Decimal `json:"units"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Fees         decimal.Decimal `json:"fees"`
	TradeDate    time.Time       `json:"tradeDate"`
	LastModified time.Time       `json:"lastModified"`
}
