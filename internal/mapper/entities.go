package mapper

import (
	"time"

	"github.com/Redser06/homebudgeter/internal/models"
)

// One mapper per synchronized entity type. The conversions are mechanical:
// every wire field is renamed from its snake_case form, timestamps cross as
// models.Timestamp, and foreign keys stay plain id strings.

type HouseholdMembers struct{}

func (HouseholdMembers) Table() string                               { return models.TableHouseholdMembers }
func (HouseholdMembers) ID(m *models.HouseholdMember) string         { return m.ID }
func (HouseholdMembers) LastModified(m *models.HouseholdMember) time.Time { return m.LastModified }

func (HouseholdMembers) ToDTO(m *models.HouseholdMember) *models.HouseholdMemberDTO {
	return &models.HouseholdMemberDTO{
		ID:           m.ID,
		Name:         m.Name,
		Role:         m.Role,
		Email:        m.Email,
		LastModified: models.NewTimestamp(m.LastModified),
	}
}

func (HouseholdMembers) Apply(d *models.HouseholdMemberDTO, m *models.HouseholdMember) error {
	m.ID = d.ID
	m.Name = d.Name
	m.Role = d.Role
	m.Email = d.Email
	m.LastModified = d.LastModified.Time
	return nil
}

func (mm HouseholdMembers) New(d *models.HouseholdMemberDTO) (*models.HouseholdMember, error) {
	var m models.HouseholdMember
	return &m, mm.Apply(d, &m)
}

func (HouseholdMembers) Refs(*models.HouseholdMemberDTO) map[string]string { return nil }

type Accounts struct{}

func (Accounts) Table() string                            { return models.TableAccounts }
func (Accounts) ID(m *models.Account) string              { return m.ID }
func (Accounts) LastModified(m *models.Account) time.Time { return m.LastModified }

func (Accounts) ToDTO(m *models.Account) *models.AccountDTO {
	return &models.AccountDTO{
		ID:             m.ID,
		OwnerID:        m.OwnerID,
		Name:           m.Name,
		Kind:           m.Kind,
		Currency:       m.Currency,
		OpeningBalance: m.OpeningBalance,
		LastModified:   models.NewTimestamp(m.LastModified),
	}
}

func (Accounts) Apply(d *models.AccountDTO, m *models.Account) error {
	m.ID = d.ID
	m.OwnerID = d.OwnerID
	m.Name = d.Name
	m.Kind = d.Kind
	m.Currency = d.Currency
	m.OpeningBalance = d.OpeningBalance
	m.LastModified = d.LastModified.Time
	return nil
}

func (mm Accounts) New(d *models.AccountDTO) (*models.Account, error) {
	var m models.Account
	return &m, mm.Apply(d, &m)
}

func (Accounts) Refs(d *models.AccountDTO) map[string]string {
	if d.OwnerID == "" {
		return nil
	}
	return map[string]string{models.TableHouseholdMembers: d.OwnerID}
}

type BudgetCategories struct{}

func (BudgetCategories) Table() string                                   { return models.TableBudgetCategories }
func (BudgetCategories) ID(m *models.BudgetCategory) string              { return m.ID }
func (BudgetCategories) LastModified(m *models.BudgetCategory) time.Time { return m.LastModified }

func (BudgetCategories) ToDTO(m *models.BudgetCategory) *models.BudgetCategoryDTO {
	return &models.BudgetCategoryDTO{
		ID:           m.ID,
		Name:         m.Name,
		MonthlyLimit: m.MonthlyLimit,
		Color:        m.Color,
		LastModified: models.NewTimestamp(m.LastModified),
	}
}

func (BudgetCategories) Apply(d *models.BudgetCategoryDTO, m *models.BudgetCategory) error {
	m.ID = d.ID
	m.Name = d.Name
	m.MonthlyLimit = d.MonthlyLimit
	m.Color = d.Color
	m.LastModified = d.LastModified.Time
	return nil
}

func (mm BudgetCategories) New(d *models.BudgetCategoryDTO) (*models.BudgetCategory, error) {
	var m models.BudgetCategory
	return &m, mm.Apply(d, &m)
}

func (BudgetCategories) Refs(*models.BudgetCategoryDTO) map[string]string { return nil }

type RecurringTemplates struct{}

func (RecurringTemplates) Table() string                                      { return models.TableRecurringTemplates }
func (RecurringTemplates) ID(m *models.RecurringTemplate) string              { return m.ID }
func (RecurringTemplates) LastModified(m *models.RecurringTemplate) time.Time { return m.LastModified }

func (RecurringTemplates) ToDTO(m *models.RecurringTemplate) *models.RecurringTemplateDTO {
	return &models.RecurringTemplateDTO{
		ID:           m.ID,
		AccountID:    m.AccountID,
		CategoryID:   m.CategoryID,
		Description:  m.Description,
		Amount:       m.Amount,
		Frequency:    m.Frequency,
		NextDue:      models.NewTimestamp(m.NextDue),
		LastModified: models.NewTimestamp(m.LastModified),
	}
}

func (RecurringTemplates) Apply(d *models.RecurringTemplateDTO, m *models.RecurringTemplate) error {
	m.ID = d.ID
	m.AccountID = d.AccountID
	m.CategoryID = d.CategoryID
	m.Description = d.Description
	m.Amount = d.Amount
	m.Frequency = d.Frequency
	m.NextDue = d.NextDue.Time
	m.LastModified = d.LastModified.Time
	return nil
}

func (mm RecurringTemplates) New(d *models.RecurringTemplateDTO) (*models.RecurringTemplate, error) {
	var m models.RecurringTemplate
	return &m, mm.Apply(d, &m)
}

func (RecurringTemplates) Refs(d *models.RecurringTemplateDTO) map[string]string {
	refs := map[string]string{models.TableAccounts: d.AccountID}
	if d.CategoryID != "" {
		refs[models.TableBudgetCategories] = d.CategoryID
	}
	return refs
}

type Transactions struct{}

func (Transactions) Table() string                                { return models.TableTransactions }
func (Transactions) ID(m *models.Transaction) string              { return m.ID }
func (Transactions) LastModified(m *models.Transaction) time.Time { return m.LastModified }

func (Transactions) ToDTO(m *models.Transaction) *models.TransactionDTO {
	return &models.TransactionDTO{
		ID:           m.ID,
		AccountID:    m.AccountID,
		CategoryID:   m.CategoryID,
		Amount:       m.Amount,
		Date:         models.NewTimestamp(m.Date),
		Merchant:     m.Merchant,
		Note:         m.Note,
		Cleared:      m.Cleared,
		LastModified: models.NewTimestamp(m.LastModified),
	}
}

func (Transactions) Apply(d *models.TransactionDTO, m *models.Transaction) error {
	m.ID = d.ID
	m.AccountID = d.AccountID
	m.CategoryID = d.CategoryID
	m.Amount = d.Amount
	m.Date = d.Date.Time
	m.Merchant = d.Merchant
	m.Note = d.Note
	m.Cleared = d.Cleared
	m.LastModified = d.LastModified.Time
	return nil
}

func (mm Transactions) New(d *models.TransactionDTO) (*models.Transaction, error) {
	var m models.Transaction
	return &m, mm.Apply(d, &m)
}

func (Transactions) Refs(d *models.TransactionDTO) map[string]string {
	refs := map[string]string{models.TableAccounts: d.AccountID}
	if d.CategoryID != "" {
		refs[models.TableBudgetCategories] = d.CategoryID
	}
	return refs
}

type BillLineItems struct{}

func (BillLineItems) Table() string                                 { return models.TableBillLineItems }
func (BillLineItems) ID(m *models.BillLineItem) string              { return m.ID }
func (BillLineItems) LastModified(m *models.BillLineItem) time.Time { return m.LastModified }

func (BillLineItems) ToDTO(m *models.BillLineItem) *models.BillLineItemDTO {
	return &models.BillLineItemDTO{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		Label:         m.Label,
		Amount:        m.Amount,
		LastModified:  models.NewTimestamp(m.LastModified),
	}
}

func (BillLineItems) Apply(d *models.BillLineItemDTO, m *models.BillLineItem) error {
	m.ID = d.ID
	m.TransactionID = d.TransactionID
	m.Label = d.Label
	m.Amount = d.Amount
	m.LastModified = d.LastModified.Time
	return nil
}

func (mm BillLineItems) New(d *models.BillLineItemDTO) (*models.BillLineItem, error) {
	var m models.BillLineItem
	return &m, mm.Apply(d, &m)
}

func (BillLineItems) Refs(d *models.BillLineItemDTO) map[string]string {
	return map[string]string{models.TableTransactions: d.TransactionID}
}

type SavingsGoals struct{}

func (SavingsGoals) Table() string                                { return models.TableSavingsGoals }
func (SavingsGoals) ID(m *models.SavingsGoal) string              { return m.ID }
func (SavingsGoals) LastModified(m *models.SavingsGoal) time.Time { return m.LastModified }

func (SavingsGoals) ToDTO(m *models.SavingsGoal) *models.SavingsGoalDTO {
	d := &models.SavingsGoalDTO{
		ID:           m.ID,
		AccountID:    m.AccountID,
		Name:         m.Name,
		Target:       m.Target,
		Saved:        m.Saved,
		LastModified: models.NewTimestamp(m.LastModified),
	}
	if m.Deadline != nil {
		ts := models.NewTimestamp(*m.Deadline)
		d.Deadline = &ts
	}
	return d
}

func (SavingsGoals) Apply(d *models.SavingsGoalDTO, m *models.SavingsGoal) error {
	m.ID = d.ID
	m.AccountID = d.AccountID
	m.Name = d.Name
	m.Target = d.Target
	m.Saved = d.Saved
	m.Deadline = nil
	if d.Deadline != nil {
		t := d.Deadline.Time
		m.Deadline = &t
	}
	m.LastModified = d.LastModified.Time
	return nil
}

func (mm SavingsGoals) New(d *models.SavingsGoalDTO) (*models.SavingsGoal, error) {
	var m models.SavingsGoal
	return &m, mm.Apply(d, &m)
}

func (SavingsGoals) Refs(d *models.SavingsGoalDTO) map[string]string {
	return map[string]string{models.TableAccounts: d.AccountID}
}

type Payslips struct{}

func (Payslips) Table() string                            { return models.TablePayslips }
func (Payslips) ID(m *models.Payslip) string              { return m.ID }
func (Payslips) LastModified(m *models.Payslip) time.Time { return m.LastModified }

func (Payslips) ToDTO(m *models.Payslip) *models.PayslipDTO {
	return &models.PayslipDTO{
		ID:           m.ID,
		MemberID:     m.MemberID,
		Employer:     m.Employer,
		PeriodStart:  models.NewTimestamp(m.PeriodStart),
		PeriodEnd:    models.NewTimestamp(m.PeriodEnd),
		Gross:        m.Gross,
		Net:          m.Net,
		Tax:          m.Tax,
		LastModified: models.NewTimestamp(m.LastModified),
	}
}

func (Payslips) Apply(d *models.PayslipDTO, m *models.Payslip) error {
	m.ID = d.ID
	m.MemberID = d.MemberID
	m.Employer = d.Employer
	m.PeriodStart = d.PeriodStart.Time
	m.PeriodEnd = d.PeriodEnd.Time
	m.Gross = d.Gross
	m.Net = d.Net
	m.Tax = d.Tax
	m.LastModified = d.LastModified.Time
	return nil
}

func (mm Payslips) New(d *models.PayslipDTO) (*models.Payslip, error) {
	var m models.Payslip
	return &m, mm.Apply(d, &m)
}

func (Payslips) Refs(d *models.PayslipDTO) map[string]string {
	return map[string]string{models.TableHouseholdMembers: d.MemberID}
}

type PensionSnapshots struct{}

func (PensionSnapshots) Table() string                                    { return models.TablePensionSnapshots }
func (PensionSnapshots) ID(m *models.PensionSnapshot) string              { return m.ID }
func (PensionSnapshots) LastModified(m *models.PensionSnapshot) time.Time { return m.LastModified }

func (PensionSnapshots) ToDTO(m *models.PensionSnapshot) *models.PensionSnapshotDTO {
	return &models.PensionSnapshotDTO{
		ID:           m.ID,
		MemberID:     m.MemberID,
		Provider:     m.Provider,
		Value:        m.Value,
		AsOf:         models.NewTimestamp(m.AsOf),
		LastModified: models.NewTimestamp(m.LastModified),
	}
}

func (PensionSnapshots) Apply(d *models.PensionSnapshotDTO, m *models.PensionSnapshot) error {
	m.ID = d.ID
	m.MemberID = d.MemberID
	m.Provider = d.Provider
	m.Value = d.Value
	m.AsOf = d.AsOf.Time
	m.LastModified = d.LastModified.Time
	return nil
}

func (mm PensionSnapshots) New(d *models.PensionSnapshotDTO) (*models.PensionSnapshot, error) {
	var m models.PensionSnapshot
	return &m, mm.Apply(d, &m)
}

func (PensionSnapshots) Refs(d *models.PensionSnapshotDTO) map[string]string {
	return map[string]string{models.TableHouseholdMembers: d.MemberID}
}

type Documents struct{}

func (Documents) Table() string                             { return models.TableDocuments }
func (Documents) ID(m *models.Document) string              { return m.ID }
func (Documents) LastModified(m *models.Document) time.Time { return m.LastModified }

func (Documents) ToDTO(m *models.Document) *models.DocumentDTO {
	return &models.DocumentDTO{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		Title:         m.Title,
		Kind:          m.Kind,
		ContentHash:   m.ContentHash,
		LastModified:  models.NewTimestamp(m.LastModified),
	}
}

func (Documents) Apply(d *models.DocumentDTO, m *models.Document) error {
	m.ID = d.ID
	m.TransactionID = d.TransactionID
	m.Title = d.Title
	m.Kind = d.Kind
	m.ContentHash = d.ContentHash
	m.LastModified = d.LastModified.Time
	return nil
}

func (mm Documents) New(d *models.DocumentDTO) (*models.Document, error) {
	var m models.Document
	return &m, mm.Apply(d, &m)
}

func (Documents) Refs(d *models.DocumentDTO) map[string]string {
	if d.TransactionID == "" {
		return nil
	}
	return map[string]string{models.TableTransactions: d.TransactionID}
}

type Investments struct{}

func (Investments) Table() string                               { return models.TableInvestments }
func (Investments) ID(m *models.Investment) string              { return m.ID }
func (Investments) LastModified(m *models.Investment) time.Time { return m.LastModified }

func (Investments) ToDTO(m *models.Investment) *models.InvestmentDTO {
	return &models.InvestmentDTO{
		ID:           m.ID,
		AccountID:    m.AccountID,
		Symbol:       m.Symbol,
		Name:         m.Name,
		Units:        m.Units,
		CostBasis:    m.CostBasis,
		LastModified: models.NewTimestamp(m.LastModified),
	}
}

func (Investments) Apply(d *models.InvestmentDTO, m *models.Investment) error {
	m.ID = d.ID
	m.AccountID = d.AccountID
	m.Symbol = d.Symbol
	m.Name = d.Name
	m.Units = d.Units
	m.CostBasis = d.CostBasis
	m.LastModified = d.LastModified.Time
	return nil
}

func (mm Investments) New(d *models.InvestmentDTO) (*models.Investment, error) {
	var m models.Investment
	return &m, mm.Apply(d, &m)
}

func (Investments) Refs(d *models.InvestmentDTO) map[string]string {
	return map[string]string{models.TableAccounts: d.AccountID}
}

type InvestmentTransactions struct{}

func (InvestmentTransactions) Table() string { return models.TableInvestmentTransactions }
func (InvestmentTransactions) ID(m *models.InvestmentTransaction) string { return m.ID }
func (InvestmentTransactions) LastModified(m *models.InvestmentTransaction) time.Time {
	return m.LastModified
}

func (InvestmentTransactions) ToDTO(m *models.InvestmentTransaction) *models.InvestmentTransactionDTO {
	return &models.InvestmentTransactionDTO{
		ID:           m.ID,
		InvestmentID: m.InvestmentID,
		Kind:         m.Kind,
		Units:        m.Units,
		UnitPrice:    m.UnitPrice,
		Fees:         m.Fees,
		TradeDate:    models.NewTimestamp(m.TradeDate),
		LastModified: models.NewTimestamp(m.LastModified),
	}
}

func (InvestmentTransactions) Apply(d *models.InvestmentTransactionDTO, m *models.InvestmentTransaction) error {
	m.ID = d.ID
	m.InvestmentID = d.InvestmentID
	m.Kind = d.Kind
	m.Units = d.Units
	m.UnitPrice = d.UnitPrice
	m.Fees = d.Fees
	m.TradeDate = d.TradeDate.Time
	m.LastModified = d.LastModified.Time
	return nil
}

func (mm InvestmentTransactions) New(d *models.InvestmentTransactionDTO) (*models.InvestmentTransaction, error) {
	var m models.InvestmentTransaction
	return &m, mm.Apply(d, &m)
}

func (InvestmentTransactions) Refs(d *models.InvestmentTransactionDTO) map[string]string {
	return map[string]string{models.TableInvestments: d.InvestmentID}
}
