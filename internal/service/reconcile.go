package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Redser06/homebudgeter/internal/mapper"
	"github.com/Redser06/homebudgeter/internal/models"
	"github.com/Redser06/homebudgeter/internal/remote"
	"github.com/Redser06/homebudgeter/internal/store"
	"github.com/Redser06/homebudgeter/pkg/metrics"
)

// TableBinding is the type-erased per-table surface the engine iterates in
// dependency order. Bind closes a generic mapper into one.
type TableBinding struct {
	Table     string
	Reconcile func(ctx context.Context, e *Engine, raw []remote.RawRecord) error
}

// Bind wraps one entity mapper into a TableBinding.
func Bind[M, D any](m mapper.Mapper[M, D]) TableBinding {
	return TableBinding{
		Table: m.Table(),
		Reconcile: func(ctx context.Context, e *Engine, raw []remote.RawRecord) error {
			return reconcileTable(ctx, e, m, raw)
		},
	}
}

// DefaultBindings returns all synchronized entity types in the fixed
// topological order (models.SyncOrder).
func DefaultBindings() []TableBinding {
	return []TableBinding{
		Bind[models.HouseholdMember, models.HouseholdMemberDTO](mapper.HouseholdMembers{}),
		Bind[models.Account, models.AccountDTO](mapper.Accounts{}),
		Bind[models.BudgetCategory, models.BudgetCategoryDTO](mapper.BudgetCategories{}),
		Bind[models.RecurringTemplate, models.RecurringTemplateDTO](mapper.RecurringTemplates{}),
		Bind[models.Transaction, models.TransactionDTO](mapper.Transactions{}),
		Bind[models.BillLineItem, models.BillLineItemDTO](mapper.BillLineItems{}),
		Bind[models.SavingsGoal, models.SavingsGoalDTO](mapper.SavingsGoals{}),
		Bind[models.Payslip, models.PayslipDTO](mapper.Payslips{}),
		Bind[models.PensionSnapshot, models.PensionSnapshotDTO](mapper.PensionSnapshots{}),
		Bind[models.Document, models.DocumentDTO](mapper.Documents{}),
		Bind[models.Investment, models.InvestmentDTO](mapper.Investments{}),
		Bind[models.InvestmentTransaction, models.InvestmentTransactionDTO](mapper.InvestmentTransactions{}),
	}
}

// reconcileTable merges one table's remote result set into the local store.
// Per record: create when absent locally, apply when the remote copy is
// strictly newer, skip otherwise. Local-only records are never deleted here;
// deletions propagate exclusively through the push/queue path. A decode
// failure aborts this table and surfaces to the orchestrator.
func reconcileTable[M, D any](ctx context.Context, e *Engine, m mapper.Mapper[M, D], raw []remote.RawRecord) error {
	table := m.Table()

	locals, err := e.store.FetchAll(ctx, table)
	if err != nil {
		return err
	}
	byID := make(map[string]store.LocalRecord, len(locals))
	for _, rec := range locals {
		byID[rec.ID] = rec
	}

	var created, updated, skipped int
	for _, rr := range raw {
		var dto D
		if err := json.Unmarshal(rr.Doc, &dto); err != nil {
			return fmt.Errorf("malformed payload for %s/%s: %w", table, rr.ID, err)
		}

		local, exists := byID[rr.ID]
		if !exists {
			model, err := m.New(&dto)
			if err != nil {
				return fmt.Errorf("failed to build %s/%s: %w", table, rr.ID, err)
			}
			e.checkRefs(ctx, table, rr.ID, m.Refs(&dto))
			if err := persistModel(ctx, e, m, model); err != nil {
				return err
			}
			created++
			continue
		}

		// Last-write-wins at whole-record granularity: the remote copy is
		// applied only when strictly newer; local wins ties.
		if !rr.UpdatedAt.After(local.Modified) {
			skipped++
			continue
		}

		var model M
		if err := json.Unmarshal(local.Doc, &model); err != nil {
			return fmt.Errorf("corrupt local record %s/%s: %w", table, rr.ID, err)
		}
		if err := m.Apply(&dto, &model); err != nil {
			return fmt.Errorf("failed to apply %s/%s: %w", table, rr.ID, err)
		}
		e.checkRefs(ctx, table, rr.ID, m.Refs(&dto))
		if err := persistModel(ctx, e, m, &model); err != nil {
			return err
		}
		updated++
	}

	metrics.RecordsReconciled.WithLabelValues(table, "created").Add(float64(created))
	metrics.RecordsReconciled.WithLabelValues(table, "updated").Add(float64(updated))
	metrics.RecordsReconciled.WithLabelValues(table, "skipped").Add(float64(skipped))
	e.logger.Debug("Reconciled table",
		"table", table,
		"remote", len(raw),
		"created", created,
		"updated", updated,
		"skipped", skipped,
	)
	return nil
}

func persistModel[M, D any](ctx context.Context, e *Engine, m mapper.Mapper[M, D], model *M) error {
	doc, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", m.Table(), m.ID(model), err)
	}
	return e.store.UpsertRecord(ctx, m.Table(), m.ID(model), m.LastModified(model), doc)
}

// checkRefs verifies that every foreign key of an incoming record resolves
// against an already-reconciled parent. Tables pull in dependency order, so
// a miss means the parent genuinely does not exist; the record is still
// stored, but the dangling link is surfaced instead of silently producing an
// unlinked record.
func (e *Engine) checkRefs(ctx context.Context, table, id string, refs map[string]string) {
	for parentTable, parentID := range refs {
		ok, err := e.store.Exists(ctx, parentTable, parentID)
		if err != nil {
			e.logger.Warn("Failed to verify foreign key",
				"table", table, "record_id", id,
				"parent_table", parentTable, "parent_id", parentID,
				"error", err)
			continue
		}
		if !ok {
			e.logger.Warn("Incoming record references a missing parent",
				"table", table, "record_id", id,
				"parent_table", parentTable, "parent_id", parentID)
		}
	}
}
