package expense

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/id"
	"clubledger/internal/core/types"
	"clubledger/internal/domain"
)

type memExpenses struct {
	rows map[id.ID]*Expense
}

func (m *memExpenses) Create(_ context.Context, e *Expense) error {
	cp := *e
	m.rows[e.ID] = &cp
	return nil
}

func (m *memExpenses) GetByID(_ context.Context, clubID, expenseID id.ID) (*Expense, error) {
	e, ok := m.rows[expenseID]
	if !ok || e.ClubID != clubID {
		return nil, apperror.NewNotFound("expense", expenseID)
	}
	cp := *e
	return &cp, nil
}

func (m *memExpenses) Update(_ context.Context, e *Expense) error {
	cp := *e
	m.rows[e.ID] = &cp
	return nil
}

func (m *memExpenses) Delete(_ context.Context, _, expenseID id.ID) error {
	delete(m.rows, expenseID)
	return nil
}

func (m *memExpenses) List(_ context.Context, f domain.ListFilter) (domain.ListResult[*Expense], error) {
	res := domain.ListResult[*Expense]{Limit: f.Limit}
	for _, e := range m.rows {
		for _, c := range f.ClubIDs {
			if e.ClubID == c {
				res.Items = append(res.Items, e)
			}
		}
	}
	res.TotalCount = int64(len(res.Items))
	return res, nil
}

type passTx struct{}

func (passTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestExpense_Validate(t *testing.T) {
	day := time.Date(2024, time.May, 4, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		e    *Expense
		code string
	}{
		{"valid", NewExpense(id.New(), types.MustMoney("120"), CategoryPayroll, day), ""},
		{"no club", NewExpense(id.ID{}, types.MustMoney("120"), CategoryPayroll, day), apperror.CodeMissingField},
		{"no date", NewExpense(id.New(), types.MustMoney("120"), CategoryPayroll, time.Time{}), apperror.CodeMissingField},
		{"bad category", NewExpense(id.New(), types.MustMoney("120"), "rent", day), apperror.CodeInvalidInput},
		{"zero amount", NewExpense(id.New(), types.Zero(), CategoryOther, day), apperror.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.e.Validate(context.Background())
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}
}

func TestService_CRUD(t *testing.T) {
	repo := &memExpenses{rows: map[id.ID]*Expense{}}
	svc := NewService(repo, passTx{})
	ctx := context.Background()
	clubID := id.New()

	e := NewExpense(clubID, types.MustMoney("300"), CategoryServices, time.Now())
	require.NoError(t, svc.Create(ctx, e))

	edited, err := svc.Edit(ctx, clubID, e.ID, func(e *Expense) error {
		e.Amount = types.MustMoney("350")
		e.IsRecurring = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, edited.Amount.Equal(types.MustMoney("350")))
	assert.True(t, repo.rows[e.ID].IsRecurring)

	_, err = svc.Edit(ctx, id.New(), e.ID, func(*Expense) error { return nil })
	assert.True(t, apperror.IsNotFound(err))

	list, err := svc.List(ctx, domain.ListFilter{ClubIDs: []id.ID{clubID}})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	require.NoError(t, svc.Delete(ctx, clubID, e.ID))
	assert.Empty(t, repo.rows)
}

type recordingChanges struct{ touched []id.ID }

func (c *recordingChanges) Touch(_ context.Context, clubIDs ...id.ID) error {
	c.touched = append(c.touched, clubIDs...)
	return nil
}

func TestService_WritesReportChangedClub(t *testing.T) {
	repo := &memExpenses{rows: map[id.ID]*Expense{}}
	svc := NewService(repo, passTx{})
	changes := &recordingChanges{}
	svc.NotifyChanges(changes)
	ctx := context.Background()
	clubID := id.New()

	e := NewExpense(clubID, types.MustMoney("80"), CategoryOther, time.Now())
	require.NoError(t, svc.Create(ctx, e))
	_, err := svc.Edit(ctx, clubID, e.ID, func(e *Expense) error {
		e.Amount = types.MustMoney("90")
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, clubID, e.ID))
	assert.Equal(t, []id.ID{clubID, clubID, clubID}, changes.touched)

	// Invalid input never reaches storage.
	require.Error(t, svc.Create(ctx, NewExpense(clubID, types.Zero(), CategoryOther, time.Now())))
	assert.Len(t, changes.touched, 3)
}
