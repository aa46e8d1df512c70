package repository

import (
	"catalog_server/database"
	"catalog_server/structs/tables"
	"context"
	"slices"
	"strings"
	"sync"
)

// memoryRepository keeps products in process memory. It backs `serve --memory` and the HTTP tests.
type memoryRepository struct {
	mu       sync.RWMutex
	products map[int64]tables.Product
	nextID   int64
}

func NewMemoryProductRepository() ProductRepository {
	return &memoryRepository{products: make(map[int64]tables.Product), nextID: 1}
}

func (m *memoryRepository) Create(ctx context.Context, product *tables.Product) (*tables.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := clone(*product)
	stored.ID = m.nextID
	m.nextID++
	m.products[stored.ID] = stored

	*product = clone(stored)
	return product, nil
}

func (m *memoryRepository) FindByID(ctx context.Context, id int64) (*tables.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	out := clone(p)
	return &out, nil
}

func (m *memoryRepository) Search(ctx context.Context, query string, page, pageSize int) (*SearchResult, error) {
	page = max(page, 1)
	if pageSize < 1 {
		pageSize = database.DefaultPageSize
	}
	pageSize = min(pageSize, database.MaxPageSize)

	term := strings.ToLower(strings.TrimSpace(query))

	m.mu.RLock()
	matches := make([]tables.Product, 0, len(m.products))
	for _, p := range m.products {
		if term == "" || strings.Contains(strings.ToLower(p.SKU), term) || strings.Contains(strings.ToLower(p.Name), term) {
			matches = append(matches, clone(p))
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(matches, func(a, b tables.Product) int {
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})

	total := len(matches)
	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)

	return &SearchResult{
		Items:      matches[start:end],
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: database.TotalPages(total, pageSize),
	}, nil
}

func (m *memoryRepository) Update(ctx context.Context, id int64, fields tables.ProductFields) (*tables.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	if fields.SKU != nil {
		p.SKU = *fields.SKU
	}
	if fields.Name != nil {
		p.Name = *fields.Name
	}
	if fields.Price != nil {
		p.Price = *fields.Price
	}
	if fields.Images != nil {
		p.Images = slices.Clone(*fields.Images)
	}
	p = clone(p)
	m.products[id] = p

	out := clone(p)
	return &out, nil
}

func (m *memoryRepository) Delete(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return false, nil
	}
	delete(m.products, id)
	return true, nil
}

func clone(p tables.Product) tables.Product {
	p.Images = slices.Clone(p.Images)
	if p.Images == nil {
		p.Images = []string{}
	}
	return p
}
