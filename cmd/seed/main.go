// Package main seeds a demo owner with two clubs, a product catalog, stock,
// a few sales and expenses. Running it twice is a no-op.
package main

import (
	"context"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"clubledger/internal/app"
	"clubledger/internal/config"
	"clubledger/internal/core/apperror"
	appctx "clubledger/internal/core/context"
	"clubledger/internal/core/entity"
	"clubledger/internal/core/id"
	"clubledger/internal/core/types"
	"clubledger/internal/domain/auth"
	"clubledger/internal/domain/catalogs/club"
	"clubledger/internal/domain/catalogs/product"
	"clubledger/internal/domain/documents/sale"
	"clubledger/internal/domain/expense"
	"clubledger/internal/domain/registers/inventory"
	"clubledger/pkg/logger"
)

type demoProduct struct {
	name     string
	category string
	kind     product.Type
	purchase string
	price    string
	stock    int64
}

var demoProducts = []demoProduct{
	{"Protein Shake", "drinks", product.TypePrepared, "18.00", "45.00", 0},
	{"Whey Protein 2lb", "supplements", product.TypeSealed, "420.00", "650.00", 12},
	{"Energy Bar", "snacks", product.TypeSealed, "12.50", "25.00", 40},
	{"Electrolyte Drink", "drinks", product.TypeSealed, "14.00", "28.00", 30},
	{"Creatine 300g", "supplements", product.TypeSealed, "290.00", "480.00", 3},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize application", "error", err)
	}
	defer a.Close()

	email := getEnv("SEED_EMAIL", "demo@clubledger.local")
	password := getEnv("SEED_PASSWORD", "demo1234")

	owner, err := a.Auth.CreateUser(ctx, email, "Demo Owner", password, auth.RoleOwner)
	if apperror.IsDuplicate(err) {
		log.Infow("demo owner already exists, nothing to seed", "email", email)
		return
	}
	if err != nil {
		log.Fatalw("failed to create demo owner", "error", err)
	}

	ctx = appctx.WithUser(ctx, &appctx.UserContext{
		UserID: owner.ID.String(),
		Email:  owner.Email,
		Name:   owner.Name,
		Role:   owner.Role,
	})

	if err := seed(ctx, a, owner.ID); err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}

	log.Infow("seeding completed successfully", "email", email)
}

func seed(ctx context.Context, a *app.App, ownerID id.ID) error {
	home, err := a.Clubs.Create(ctx, ownerID, club.CreateInput{
		Name:     "Downtown Club",
		Address:  "Av. Reforma 100",
		Timezone: a.Config.Business.Timezone,
	})
	if err != nil {
		return fmt.Errorf("create main club: %w", err)
	}
	second, err := a.Clubs.Create(ctx, ownerID, club.CreateInput{
		Name:     "Northside Club",
		Address:  "Calle Norte 42",
		Timezone: a.Config.Business.Timezone,
	})
	if err != nil {
		return fmt.Errorf("create second club: %w", err)
	}

	// Products created on the main club are copied into the second one.
	for _, d := range demoProducts {
		p := product.NewProduct(home.ID, d.name, d.kind)
		p.Category = d.category
		p.PurchasePrice = mustMoney(d.purchase)
		p.SalePrice = mustMoney(d.price)
		if err := a.Products.Create(ctx, p); err != nil {
			return fmt.Errorf("create product %s: %w", d.name, err)
		}
	}

	stockByName := make(map[string]int64, len(demoProducts))
	for _, d := range demoProducts {
		stockByName[d.name] = d.stock
	}

	products, err := a.Products.ListByClubs(ctx, []id.ID{home.ID, second.ID})
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	for _, p := range products {
		qty := stockByName[p.Name]
		if p.Type != product.TypeSealed || qty == 0 {
			continue
		}
		if _, err := a.Inventory.Adjust(ctx, inventory.AdjustInput{
			ClubID:    p.ClubID,
			ProductID: p.ID,
			Type:      entity.MovementRestock,
			Quantity:  &qty,
			Notes:     "opening stock",
		}); err != nil {
			return fmt.Errorf("restock %s: %w", p.Name, err)
		}
	}

	if err := seedSales(ctx, a, home.ID, products); err != nil {
		return err
	}
	return seedExpenses(ctx, a, home.ID, second.ID)
}

func seedSales(ctx context.Context, a *app.App, clubID id.ID, products []*product.Product) error {
	var sealed []*product.Product
	for _, p := range products {
		if p.ClubID == clubID && p.Type == product.TypeSealed {
			sealed = append(sealed, p)
		}
	}

	for i := 0; i < 3 && i < len(sealed); i++ {
		p := sealed[i]
		s := sale.NewSale(clubID)
		s.AddItem(sale.Item{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    int64(i + 1),
			UnitPrice:   p.SalePrice,
			Type:        sale.ItemSealed,
		})
		if _, err := a.Sales.CompleteSaleAtomically(ctx, s); err != nil {
			return fmt.Errorf("complete sale of %s: %w", p.Name, err)
		}
	}
	return nil
}

func seedExpenses(ctx context.Context, a *app.App, clubIDs ...id.ID) error {
	today := a.Periods.Now()
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	for _, clubID := range clubIDs {
		rows := []*expense.Expense{
			expense.NewExpense(clubID, mustMoney("8500.00"), expense.CategoryPayroll, day),
			expense.NewExpense(clubID, mustMoney("1200.00"), expense.CategoryServices, day.AddDate(0, 0, -1)),
			expense.NewExpense(clubID, mustMoney("640.50"), expense.CategoryLogistics, day.AddDate(0, 0, -3)),
		}
		rows[0].Description = "Staff payroll"
		rows[1].Description = "Electricity"
		rows[1].IsRecurring = true
		rows[2].Description = "Supplier delivery"

		for _, e := range rows {
			if err := a.Expenses.Create(ctx, e); err != nil {
				return fmt.Errorf("create expense: %w", err)
			}
		}
	}
	return nil
}

func mustMoney(s string) types.Money {
	m, err := types.NewMoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
