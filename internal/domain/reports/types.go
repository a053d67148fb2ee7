// Package reports builds the analytics reports: time-bucketed sales and
// expense figures, rankings, margins and reconstructed stock, for one club
// or every club of the caller.
package reports

import (
	"strings"
	"time"

	"clubledger/internal/core/apperror"
	"clubledger/internal/core/id"
	"clubledger/internal/core/period"
	"clubledger/internal/core/scope"
	"clubledger/internal/core/types"
)

// Type names a report.
type Type string

const (
	TypeExecutiveSummary   Type = "executive-summary"
	TypeCashFlow           Type = "cash-flow"
	TypeClubPerformance    Type = "club-performance"
	TypeExpenses           Type = "expenses"
	TypeNetProfit          Type = "net-profit"
	TypeProductMargin      Type = "product-margin"
	TypeSales              Type = "sales"
	TypeTransactionHistory Type = "transaction-history"
	TypeInventoryMovement  Type = "inventory-movement"
	TypeFutureProjections  Type = "future-projections"
)

// Types lists every report in menu order.
var Types = []Type{
	TypeExecutiveSummary,
	TypeCashFlow,
	TypeClubPerformance,
	TypeExpenses,
	TypeNetProfit,
	TypeProductMargin,
	TypeSales,
	TypeTransactionHistory,
	TypeInventoryMovement,
	TypeFutureProjections,
}

// ParseType parses a report name. Empty means executive-summary.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TypeExecutiveSummary, nil
	}
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	names := make([]string, len(Types))
	for i, t := range Types {
		names[i] = string(t)
	}
	return "", apperror.NewInvalidInput("type", "expected one of "+strings.Join(names, ", ")).
		WithDetail("value", s)
}

// Request selects a report.
type Request struct {
	Type   Type
	Period period.Period
	Scope  scope.Scope
}

// --- executive-summary ---

type Ranked struct {
	Name       string      `json:"name"`
	Sales      types.Money `json:"sales"`
	Percentage types.Money `json:"percentage"`
}

type TopExpense struct {
	Name       string      `json:"name"`
	Amount     types.Money `json:"amount"`
	Percentage types.Money `json:"percentage"`
}

type Recommendation struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Type string `json:"type"`
}

type ExecutiveSummary struct {
	Period          string           `json:"period"`
	NetProfit       types.Money      `json:"netProfit"`
	NetProfitChange types.Money      `json:"netProfitChange"`
	TotalSales      types.Money      `json:"totalSales"`
	TotalExpenses   types.Money      `json:"totalExpenses"`
	TopProduct      *Ranked          `json:"topProduct"`
	TopExpense      *TopExpense      `json:"topExpense"`
	TopClub         *Ranked          `json:"topClub"`
	Recommendations []Recommendation `json:"recommendations"`
}

// --- cash-flow ---

type CashFlowPoint struct {
	Date    string      `json:"date"`
	Inflow  types.Money `json:"inflow"`
	Outflow types.Money `json:"outflow"`
	Balance types.Money `json:"balance"`
}

type CashFlow struct {
	CurrentMonth     string          `json:"currentMonth"`
	CashFlowData     []CashFlowPoint `json:"cashFlowData"`
	CurrentBalance   types.Money     `json:"currentBalance"`
	Next7DaysOutflow types.Money     `json:"next7DaysOutflow"`
}

// --- club-performance ---

type ClubFigures struct {
	ID          id.ID       `json:"id"`
	Name        string      `json:"name"`
	Address     string      `json:"address"`
	Sales       types.Money `json:"sales"`
	Expenses    types.Money `json:"expenses"`
	Profit      types.Money `json:"profit"`
	SalesChange types.Money `json:"salesChange"`
	Inventory   int64       `json:"inventory"`
	IsMain      bool        `json:"isMain"`
}

type ClubPerformance struct {
	Period    string        `json:"period"`
	ClubsData []ClubFigures `json:"clubsData"`
}

// --- expenses ---

type ExpenseLine struct {
	ID          id.ID       `json:"id"`
	Date        time.Time   `json:"date"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Supplier    string      `json:"supplier"`
	Amount      types.Money `json:"amount"`
	IsRecurring bool        `json:"isRecurring"`
	Club        id.ID       `json:"club"`
}

type CategoryShare struct {
	Category   string      `json:"category"`
	Amount     types.Money `json:"amount"`
	Percentage types.Money `json:"percentage"`
}

type ExpenseAlert struct {
	Category         string      `json:"category"`
	Current          types.Money `json:"current"`
	Previous         types.Money `json:"previous"`
	ChangePercentage types.Money `json:"changePercentage"`
	Message          string      `json:"message"`
}

type Expenses struct {
	Period              string                 `json:"period"`
	ExpensesData        []ExpenseLine          `json:"expensesData"`
	CategoryTotals      map[string]types.Money `json:"categoryTotals"`
	TotalExpenses       types.Money            `json:"totalExpenses"`
	CategoryPercentages []CategoryShare        `json:"categoryPercentages"`
	CriticalExpenses    []CategoryShare        `json:"criticalExpenses"`
	Alerts              []ExpenseAlert         `json:"alerts"`
}

// --- net-profit ---

type MonthFigures struct {
	Month    string      `json:"month"`
	Sales    types.Money `json:"sales"`
	Expenses types.Money `json:"expenses"`
	Profit   types.Money `json:"profit"`
}

type NetProfit struct {
	Period           string         `json:"period"`
	PreviousPeriod   string         `json:"previousPeriod"`
	TotalSales       types.Money    `json:"totalSales"`
	TotalExpenses    types.Money    `json:"totalExpenses"`
	NetProfit        types.Money    `json:"netProfit"`
	ChangePercentage types.Money    `json:"changePercentage"`
	IsPositive       bool           `json:"isPositive"`
	MonthlySummary   []MonthFigures `json:"monthlySummary"`
}

// --- product-margin ---

type ProductMarginLine struct {
	ID               id.ID       `json:"id"`
	Name             string      `json:"name"`
	Type             string      `json:"type"`
	Cost             types.Money `json:"cost"`
	Price            types.Money `json:"price"`
	Margin           types.Money `json:"margin"`
	MarginPercentage int64       `json:"marginPercentage"`
	Sales            int64       `json:"sales"`
	TotalProfit      types.Money `json:"totalProfit"`
}

type ProductMargin struct {
	Period                string              `json:"period"`
	ProductsData          []ProductMarginLine `json:"productsData"`
	AvgMarginPercentage   types.Money         `json:"avgMarginPercentage"`
	TotalProfit           types.Money         `json:"totalProfit"`
	MostProfitableProduct *ProductMarginLine  `json:"mostProfitableProduct"`
	HighestProfitProduct  *ProductMarginLine  `json:"highestProfitProduct"`
}

// --- sales ---

type SalesLine struct {
	Product     id.ID       `json:"product"`
	ProductName string      `json:"productName"`
	Quantity    int64       `json:"quantity"`
	Revenue     types.Money `json:"revenue"`
	Club        id.ID       `json:"club"`
	Type        string      `json:"type"`
}

type DaySales struct {
	Day   string      `json:"day"`
	Sales types.Money `json:"sales"`
}

type CategorySlice struct {
	Name       string      `json:"name"`
	Percentage types.Money `json:"percentage"`
	Value      types.Money `json:"value"`
}

type Sales struct {
	Period        string          `json:"period"`
	SalesData     []SalesLine     `json:"salesData"`
	TotalRevenue  types.Money     `json:"totalRevenue"`
	TotalQuantity int64           `json:"totalQuantity"`
	TopProducts   []SalesLine     `json:"topProducts"`
	DailySales    []DaySales      `json:"dailySales"`
	CategoryData  []CategorySlice `json:"categoryData"`
}

// --- transaction-history ---

type Transaction struct {
	ID          id.ID       `json:"id"`
	Date        time.Time   `json:"date"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Amount      types.Money `json:"amount"`
	Category    string      `json:"category"`
	Reference   string      `json:"reference"`
}

type TransactionHistory struct {
	Period           string        `json:"period"`
	TransactionsData []Transaction `json:"transactionsData"`
}

// --- inventory-movement ---

type InventoryLine struct {
	ID           id.ID       `json:"id"`
	Name         string      `json:"name"`
	Category     string      `json:"category"`
	InitialStock int64       `json:"initialStock"`
	Inflow       int64       `json:"inflow"`
	Outflow      int64       `json:"outflow"`
	CurrentStock int64       `json:"currentStock"`
	RotationDays types.Money `json:"rotationDays"`
	Alert        string      `json:"alert"`
}

type InventoryMovement struct {
	Period        string          `json:"period"`
	InventoryData []InventoryLine `json:"inventoryData"`
	TotalInflow   int64           `json:"totalInflow"`
	TotalOutflow  int64           `json:"totalOutflow"`
	TotalStock    int64           `json:"totalStock"`
	Categories    []string        `json:"categories"`
}

// --- future-projections ---

type ProjectionMonth struct {
	Month        string      `json:"month"`
	Sales        types.Money `json:"sales"`
	Expenses     types.Money `json:"expenses"`
	Profit       types.Money `json:"profit"`
	IsProjection bool        `json:"isProjection"`
}

type Goal struct {
	Name       string      `json:"name"`
	Target     types.Money `json:"target"`
	Current    types.Money `json:"current"`
	Percentage types.Money `json:"percentage"`
}

type FutureProjections struct {
	Year           int               `json:"year"`
	ProjectionData []ProjectionMonth `json:"projectionData"`
	GoalsData      []Goal            `json:"goalsData"`
}

// --- sales vs expenses ---

type SalesExpensesPoint struct {
	Date     string      `json:"date"`
	Sales    types.Money `json:"sales"`
	Expenses types.Money `json:"expenses"`
}

// primaryField names the array exports render for each report.
var primaryField = map[Type]string{
	TypeCashFlow:           "cashFlowData",
	TypeClubPerformance:    "clubsData",
	TypeExpenses:           "expensesData",
	TypeNetProfit:          "monthlySummary",
	TypeProductMargin:      "productsData",
	TypeSales:              "salesData",
	TypeTransactionHistory: "transactionsData",
	TypeInventoryMovement:  "inventoryData",
	TypeFutureProjections:  "projectionData",
}
