package reports

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"clubledger/internal/core/id"
	"clubledger/internal/core/period"
	"clubledger/internal/core/scope"
)

const topProductsLimit = 5

const uncategorized = "Uncategorized"

func (s *Service) sales(ctx context.Context, sc scope.Scope, b period.Bounds) (*Sales, error) {
	items, err := s.repo.SaleItems(ctx, sc.IDs(), b.Sales)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}

	type lineKey struct{ club, product id.ID }
	index := make(map[lineKey]int)
	lines := []SalesLine{}
	days := newSeries(period.Days(b.Sales, b.Location()))
	categories := newOrdered[string]()
	revenue := decimal.Zero
	var quantity int64

	for _, it := range items {
		k := lineKey{it.ClubID, it.ProductID}
		i, ok := index[k]
		if !ok {
			i = len(lines)
			index[k] = i
			lines = append(lines, SalesLine{
				Product:     it.ProductID,
				ProductName: it.ProductName,
				Revenue:     decimal.Zero,
				Club:        it.ClubID,
				Type:        it.Type,
			})
		}
		lines[i].Quantity += it.Quantity
		lines[i].Revenue = lines[i].Revenue.Add(it.Amount)

		days.add(b.SalesDay(it.CreatedAt), it.Amount)
		cat := it.Category
		if cat == "" {
			cat = uncategorized
		}
		categories.add(cat, it.Amount)
		revenue = revenue.Add(it.Amount)
		quantity += it.Quantity
	}

	top := make([]SalesLine, len(lines))
	copy(top, lines)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Revenue.GreaterThan(top[j].Revenue) })
	if len(top) > topProductsLimit {
		top = top[:topProductsLimit]
	}

	daily := make([]DaySales, len(days.keys))
	for i, d := range days.keys {
		daily[i] = DaySales{Day: d, Sales: days.get(d)}
	}

	cats := make([]CategorySlice, 0, len(categories.keys))
	for _, c := range categories.keys {
		v := categories.get(c)
		cats = append(cats, CategorySlice{Name: c, Value: v, Percentage: share(v, revenue)})
	}

	return &Sales{
		Period:        b.Label,
		SalesData:     lines,
		TotalRevenue:  revenue,
		TotalQuantity: quantity,
		TopProducts:   top,
		DailySales:    daily,
		CategoryData:  cats,
	}, nil
}

// productMargin covers every product of the scope; Sales is the quantity sold
// in the requested period.
func (s *Service) productMargin(ctx context.Context, sc scope.Scope, b period.Bounds) (*ProductMargin, error) {
	ids := sc.IDs()
	products, err := s.repo.Products(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	items, err := s.repo.SaleItems(ctx, ids, b.Sales)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}

	sold := make(map[id.ID]int64)
	for _, it := range items {
		sold[it.ProductID] += it.Quantity
	}

	out := &ProductMargin{
		Period:              b.Label,
		ProductsData:        make([]ProductMarginLine, 0, len(products)),
		AvgMarginPercentage: decimal.Zero,
		TotalProfit:         decimal.Zero,
	}
	var pctSum int64
	for _, p := range products {
		margin := p.SalePrice.Sub(p.PurchasePrice)
		n := sold[p.ID]
		line := ProductMarginLine{
			ID:               p.ID,
			Name:             p.Name,
			Type:             p.Type,
			Cost:             p.PurchasePrice,
			Price:            p.SalePrice,
			Margin:           margin,
			MarginPercentage: marginPercent(p.PurchasePrice, p.SalePrice),
			Sales:            n,
			TotalProfit:      margin.Mul(decimal.NewFromInt(n)),
		}
		out.ProductsData = append(out.ProductsData, line)
		out.TotalProfit = out.TotalProfit.Add(line.TotalProfit)
		pctSum += line.MarginPercentage
	}

	if len(out.ProductsData) == 0 {
		return out, nil
	}
	out.AvgMarginPercentage = decimal.NewFromInt(pctSum).
		Div(decimal.NewFromInt(int64(len(out.ProductsData)))).Round(2)

	most, highest := 0, 0
	for i, l := range out.ProductsData {
		if l.MarginPercentage > out.ProductsData[most].MarginPercentage {
			most = i
		}
		if l.TotalProfit.GreaterThan(out.ProductsData[highest].TotalProfit) {
			highest = i
		}
	}
	mp, hp := out.ProductsData[most], out.ProductsData[highest]
	out.MostProfitableProduct = &mp
	out.HighestProfitProduct = &hp
	return out, nil
}
