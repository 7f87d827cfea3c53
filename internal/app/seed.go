package app

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"uniform-store/internal/core"
)

var defaultSchools = []CreateSchoolRequest{
	{Name: "Municipal", Address: "Rua Principal, 123", Phone: "(11) 9999-9999"},
	{Name: "Desperta", Address: "Av. Central, 456", Phone: "(11) 8888-8888"},
	{Name: "São Tadeu", Address: "Praça da Liberdade, 789", Phone: "(11) 7777-7777"},
}

type seedProduct struct {
	name     string
	category string
	color    string
	price    string
	cost     string
	stock    int
}

// demoCatalog is created for every default school in two sizes.
var demoCatalog = []seedProduct{
	{name: "Camiseta Manga Curta", category: "Shirts", color: "Branco", price: "29.90", cost: "14.50", stock: 20},
	{name: "Bermuda Tactel", category: "Pants/Shorts", color: "Azul Marinho", price: "39.90", cost: "18.00", stock: 12},
	{name: "Moletom com Capuz", category: "Sweaters", color: "Cinza", price: "89.90", cost: "45.00", stock: 6},
}

var demoSizes = []string{"8", "M"}

func (s *appService) Seed(ctx context.Context) (*SeedResult, error) {
	res := &SeedResult{}

	for _, req := range defaultSchools {
		if _, err := s.CreateSchool(ctx, req); err != nil {
			if errors.Is(err, core.ErrDuplicateSchool) {
				continue
			}
			return nil, err
		}
		res.SchoolsCreated++
	}

	schools, err := s.partyService.ListSchools(ctx, true)
	if err != nil {
		return nil, err
	}
	for _, school := range schools {
		schoolID := school.ID
		for _, item := range demoCatalog {
			for _, size := range demoSizes {
				cost := decimal.RequireFromString(item.cost)
				_, err := s.CreateProduct(ctx, CreateProductRequest{
					Name:      item.name,
					Category:  item.category,
					Size:      size,
					Color:     item.color,
					UnitPrice: decimal.RequireFromString(item.price),
					UnitCost:  &cost,
					Stock:     item.stock,
					SchoolID:  &schoolID,
				})
				if err != nil {
					if errors.Is(err, core.ErrDuplicateProduct) {
						continue
					}
					return nil, err
				}
				res.ProductsCreated++
			}
		}
	}

	s.logger.Info("seed complete",
		zap.Int("schools_created", res.SchoolsCreated),
		zap.Int("products_created", res.ProductsCreated))
	return res, nil
}
