package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/KristianPetrov/1uplabs/internal/catalog"
	"github.com/KristianPetrov/1uplabs/internal/model"
	"github.com/KristianPetrov/1uplabs/internal/repository"
)

// Effective is the price and inventory ceiling actually in force for a
// product after merging the catalog default with any admin override. A nil
// Inventory means unlimited.
type Effective struct {
	PriceCents int64
	Inventory  *int64
}

type PricingRow struct {
	Slug                string `json:"slug"`
	EffectivePriceCents int64  `json:"effectivePriceCents"`
	EffectiveInventory  *int64 `json:"effectiveInventory"`
}

type PricingService interface {
	// Resolve merges catalog defaults with overrides for every requested
	// slug. Pure read; an unknown slug fails the whole call.
	Resolve(ctx context.Context, slugs []string) (map[string]Effective, error)
	// Rows is the storefront-facing variant: unknown slugs are dropped and a
	// store read error degrades to an empty list so product pages still
	// render with catalog defaults.
	Rows(ctx context.Context, slugs []string) []PricingRow
	SetOverride(ctx context.Context, slug string, priceCents, inventory *int64) error
	DeleteOverride(ctx context.Context, slug string) error
}

type pricingServiceImpl struct {
	overrideRepo repository.OverrideRepository
	logger       *zap.Logger
}

func NewPricingService(overrideRepo repository.OverrideRepository, logger *zap.Logger) PricingService {
	return &pricingServiceImpl{
		overrideRepo: overrideRepo,
		logger:       logger,
	}
}

func dedupSlugs(slugs []string) []string {
	seen := make(map[string]struct{}, len(slugs))
	unique := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		unique = append(unique, slug)
	}
	return unique
}

func (s *pricingServiceImpl) Resolve(ctx context.Context, slugs []string) (map[string]Effective, error) {
	unique := dedupSlugs(slugs)

	for _, slug := range unique {
		if _, ok := catalog.BySlug(slug); !ok {
			return nil, &UnknownProductError{Slug: slug}
		}
	}

	overrides, err := s.overrideRepo.FindMany(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("load price overrides: %w", err)
	}

	overrideBySlug := make(map[string]*model.PriceOverride, len(overrides))
	for _, o := range overrides {
		overrideBySlug[o.Slug] = o
	}

	resolved := make(map[string]Effective, len(unique))
	for _, slug := range unique {
		product, _ := catalog.BySlug(slug)
		effective := Effective{PriceCents: product.BasePriceCents}
		if o, ok := overrideBySlug[slug]; ok {
			if o.PriceCents != nil {
				effective.PriceCents = *o.PriceCents
			}
			effective.Inventory = o.Inventory
		}
		resolved[slug] = effective
	}

	return resolved, nil
}

func (s *pricingServiceImpl) Rows(ctx context.Context, slugs []string) []PricingRow {
	if len(slugs) == 0 {
		slugs = catalog.Slugs()
	}

	known := make([]string, 0, len(slugs))
	for _, slug := range dedupSlugs(slugs) {
		if _, ok := catalog.BySlug(slug); ok {
			known = append(known, slug)
		}
	}

	resolved, err := s.Resolve(ctx, known)
	if err != nil {
		s.logger.Warn("pricing rows degraded to empty", zap.Error(err))
		return []PricingRow{}
	}

	rows := make([]PricingRow, 0, len(known))
	for _, slug := range known {
		e := resolved[slug]
		rows = append(rows, PricingRow{
			Slug:                slug,
			EffectivePriceCents: e.PriceCents,
			EffectiveInventory:  e.Inventory,
		})
	}

	return rows
}

func (s *pricingServiceImpl) SetOverride(ctx context.Context, slug string, priceCents, inventory *int64) error {
	if _, ok := catalog.BySlug(slug); !ok {
		return &UnknownProductError{Slug: slug}
	}
	if priceCents != nil && *priceCents < 0 {
		return invalidInput("priceCents", "must be >= 0")
	}
	if inventory != nil && *inventory < 0 {
		return invalidInput("inventory", "must be >= 0")
	}

	// Both fields cleared means "no override"; the row is removed rather
	// than stored empty.
	if priceCents == nil && inventory == nil {
		return s.overrideRepo.Delete(ctx, slug)
	}

	return s.overrideRepo.Upsert(ctx, &model.PriceOverride{
		Slug:       slug,
		PriceCents: priceCents,
		Inventory:  inventory,
	})
}

func (s *pricingServiceImpl) DeleteOverride(ctx context.Context, slug string) error {
	if _, ok := catalog.BySlug(slug); !ok {
		return &UnknownProductError{Slug: slug}
	}
	return s.overrideRepo.Delete(ctx, slug)
}
