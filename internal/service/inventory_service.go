package service

import (
	"context"
	"strings"

	"boxmgr/internal/model"
)

type CategoryStore interface {
	List(ctx context.Context) ([]model.Category, error)
	Get(ctx context.Context, id int64) (model.Category, error)
	Create(ctx context.Context, name string, color string) (model.Category, error)
	Update(ctx context.Context, id int64, upd model.UpdateCategoryRequest) error
	Delete(ctx context.Context, id int64) error
}

type BoxStore interface {
	List(ctx context.Context, categoryID *int64) ([]model.BoxWithCategory, error)
	Get(ctx context.Context, id int64) (model.BoxWithCategory, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, req model.CreateBoxRequest) (model.Box, error)
	Update(ctx context.Context, id int64, upd model.UpdateBoxRequest) error
	Delete(ctx context.Context, id int64) error
}

type ItemStore interface {
	ItemsInBox(ctx context.Context, boxID int64) ([]model.BoxItem, error)
	AddToBox(ctx context.Context, boxID int64, name string, quantity int) (model.BoxItem, error)
	AddNamesToBox(ctx context.Context, boxID int64, names []string) ([]string, error)
	RemoveFromBox(ctx context.Context, boxID int64, itemID int64) error
	Search(ctx context.Context, query string) ([]model.SearchResult, error)
}

// InventoryService is the data-access glue for categories, boxes and
// items: thin validation over the stores, plus the composed views
// (box detail, search, print overview).
type InventoryService struct {
	categories CategoryStore
	boxes      BoxStore
	items      ItemStore
}

func NewInventoryService(categories CategoryStore, boxes BoxStore, items ItemStore) *InventoryService {
	return &InventoryService{categories: categories, boxes: boxes, items: items}
}

func (s *InventoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categories.List(ctx)
}

func (s *InventoryService) GetCategory(ctx context.Context, id int64) (model.Category, error) {
	return s.categories.Get(ctx, id)
}

func (s *InventoryService) CreateCategory(ctx context.Context, req model.CreateCategoryRequest) (model.Category, error) {
	if strings.TrimSpace(req.Name) == "" {
		return model.Category{}, model.ErrInvalidInput
	}
	return s.categories.Create(ctx, req.Name, req.Color)
}

func (s *InventoryService) UpdateCategory(ctx context.Context, id int64, req model.UpdateCategoryRequest) (model.Category, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return model.Category{}, model.ErrInvalidInput
	}
	if err := s.categories.Update(ctx, id, req); err != nil {
		return model.Category{}, err
	}
	return s.categories.Get(ctx, id)
}

func (s *InventoryService) DeleteCategory(ctx context.Context, id int64) error {
	return s.categories.Delete(ctx, id)
}

func (s *InventoryService) ListBoxes(ctx context.Context, categoryID *int64) ([]model.BoxWithCategory, error) {
	return s.boxes.List(ctx, categoryID)
}

// GetBox returns the box together with its contents.
func (s *InventoryService) GetBox(ctx context.Context, id int64) (model.BoxDetail, error) {
	box, err := s.boxes.Get(ctx, id)
	if err != nil {
		return model.BoxDetail{}, err
	}

	items, err := s.items.ItemsInBox(ctx, id)
	if err != nil {
		return model.BoxDetail{}, err
	}

	return model.BoxDetail{BoxWithCategory: box, Items: items}, nil
}

func (s *InventoryService) CreateBox(ctx context.Context, req model.CreateBoxRequest) (model.Box, error) {
	if strings.TrimSpace(req.Name) == "" || req.Number <= 0 || req.CategoryID <= 0 {
		return model.Box{}, model.ErrInvalidInput
	}
	return s.boxes.Create(ctx, req)
}

func (s *InventoryService) UpdateBox(ctx context.Context, id int64, req model.UpdateBoxRequest) (model.BoxWithCategory, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return model.BoxWithCategory{}, model.ErrInvalidInput
	}
	if err := s.boxes.Update(ctx, id, req); err != nil {
		return model.BoxWithCategory{}, err
	}
	return s.boxes.Get(ctx, id)
}

func (s *InventoryService) DeleteBox(ctx context.Context, id int64) error {
	return s.boxes.Delete(ctx, id)
}

func (s *InventoryService) AddItem(ctx context.Context, boxID int64, req model.AddItemRequest) (model.BoxItem, error) {
	if strings.TrimSpace(req.Name) == "" {
		return model.BoxItem{}, model.ErrInvalidInput
	}

	exists, err := s.boxes.Exists(ctx, boxID)
	if err != nil {
		return model.BoxItem{}, err
	}
	if !exists {
		return model.BoxItem{}, model.ErrBoxNotFound
	}

	return s.items.AddToBox(ctx, boxID, req.Name, req.Quantity)
}

func (s *InventoryService) RemoveItem(ctx context.Context, boxID int64, itemID int64) error {
	return s.items.RemoveFromBox(ctx, boxID, itemID)
}

func (s *InventoryService) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, model.ErrInvalidInput
	}
	return s.items.Search(ctx, query)
}

// PrintOverview assembles the consolidated categories → boxes → items
// view used by the printable summary.
func (s *InventoryService) PrintOverview(ctx context.Context) ([]model.PrintCategory, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}

	boxes, err := s.boxes.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[int64][]model.PrintBox, len(categories))
	for _, box := range boxes {
		items, err := s.items.ItemsInBox(ctx, box.ID)
		if err != nil {
			return nil, err
		}
		byCategory[box.CategoryID] = append(byCategory[box.CategoryID], model.PrintBox{Box: box.Box, Items: items})
	}

	overview := make([]model.PrintCategory, 0, len(categories))
	for _, category := range categories {
		section := model.PrintCategory{Category: category, Boxes: byCategory[category.ID]}
		if section.Boxes == nil {
			section.Boxes = []model.PrintBox{}
		}
		overview = append(overview, section)
	}
	return overview, nil
}
