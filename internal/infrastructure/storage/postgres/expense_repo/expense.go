// Package expense_repo provides the PostgreSQL expense store.
package expense_repo

import (
	"clubledger/internal/domain/expense"
	"clubledger/internal/infrastructure/storage/postgres"
	"clubledger/internal/infrastructure/storage/postgres/catalog_repo"
)

const expenseTable = "expenses"

// ExpenseRepo implements expense.Repository.
type ExpenseRepo struct {
	*catalog_repo.BaseClubRepo[*expense.Expense]
}

// NewExpenseRepo creates an expense repository. Lists default to newest date first.
func NewExpenseRepo(txManager *postgres.TxManager) *ExpenseRepo {
	return &ExpenseRepo{
		BaseClubRepo: catalog_repo.NewBaseClubRepo[*expense.Expense](
			txManager,
			expenseTable, "expense",
			postgres.ExtractDBColumns[expense.Expense](),
			func() *expense.Expense { return new(expense.Expense) },
			catalog_repo.WithSearch("description", "supplier"),
			catalog_repo.WithDateColumn("date"),
			catalog_repo.WithDefaultOrder("date DESC"),
		),
	}
}

var _ expense.Repository = (*ExpenseRepo)(nil)
