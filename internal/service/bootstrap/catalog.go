package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/dental-api/internal/model"
	"github.com/jwalitptl/dental-api/internal/repository"
)

// CatalogItem is a global service entry seeded by dentalctl
type CatalogItem struct {
	Name        string
	Price       float64
	Description string
}

var DefaultCatalog = []CatalogItem{
	{Name: "Консультация", Price: 5000, Description: "Первичная консультация стоматолога"},
	{Name: "Лечение кариеса", Price: 15000, Description: "Лечение кариеса с пломбированием"},
	{Name: "Удаление зуба", Price: 8000, Description: "Простое удаление зуба"},
	{Name: "Протезирование", Price: 50000, Description: "Изготовление и установка коронки"},
	{Name: "Имплантация", Price: 120000, Description: "Установка зубного импланта"},
	{Name: "Чистка зубов", Price: 10000, Description: "Профессиональная гигиена полости рта"},
	{Name: "Отбеливание", Price: 25000, Description: "Отбеливание зубов"},
	{Name: "Ортодонтия", Price: 80000, Description: "Исправление прикуса"},
	{Name: "Детская стоматология", Price: 12000, Description: "Лечение зубов у детей"},
	{Name: "Эндодонтия", Price: 20000, Description: "Лечение корневых каналов"},
}

const catalogScanLimit = 10000

// SeedCatalog adds the global items whose names are not in the catalog yet.
// It returns how many were created.
func SeedCatalog(ctx context.Context, repo repository.ServiceRepository, items []CatalogItem) (int, error) {
	existing, err := repo.List(ctx, model.ServiceFilter{Limit: catalogScanLimit})
	if err != nil {
		return 0, fmt.Errorf("failed to list services: %w", err)
	}
	names := make(map[string]bool, len(existing))
	for _, svc := range existing {
		names[svc.Name] = true
	}

	created := 0
	for _, item := range items {
		if names[item.Name] {
			continue
		}
		svc := &model.Service{
			Name:     item.Name,
			Price:    item.Price,
			IsActive: true,
		}
		if item.Description != "" {
			desc := item.Description
			svc.Description = &desc
		}
		if err := repo.Create(ctx, svc); err != nil {
			return created, fmt.Errorf("failed to create service %q: %w", item.Name, err)
		}
		names[item.Name] = true
		created++
	}
	if created > 0 {
		log.Info().Int("created", created).Msg("service catalog seeded")
	}
	return created, nil
}
