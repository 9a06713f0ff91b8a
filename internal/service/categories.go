package service

import (
	"context"

	"github.com/Skotchmaster/charity/internal/domain"
	"github.com/Skotchmaster/charity/internal/transport"
	"github.com/Skotchmaster/charity/pkg/logging"
)

type CategoryService struct {
	Store  CategoryStore
	Events Publisher
}

func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.Store.ListCategories(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*domain.Category, error) {
	return s.Store.GetCategory(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, req transport.CategoryRequest) (*domain.Category, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	c := &domain.Category{Name: req.Name}
	if err := s.Store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	publish(ctx, s.Events, TopicCatalog, c.ID, map[string]any{
		"type":       "category_created",
		"categoryID": c.ID,
		"name":       c.Name,
	})
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, req transport.CategoryUpdateRequest) (*domain.Category, error) {
	c, err := s.Store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	if req.Name.Set {
		if req.Name.Null {
			verr.Add("name", "must not be null")
		} else {
			checkVar(verr, "name", req.Name.Value, "notblank,max=255")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if !domain.Apply(&c.Name, req.Name) {
		return c, nil
	}
	if err := s.Store.SaveCategory(ctx, c); err != nil {
		return nil, err
	}
	publish(ctx, s.Events, TopicCatalog, c.ID, map[string]any{
		"type":       "category_updated",
		"categoryID": c.ID,
		"name":       c.Name,
	})
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id uint) (*domain.Category, error) {
	c, err := s.Store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Store.DeleteCategory(ctx, id); err != nil {
		logging.FromContext(ctx).Error("delete_category_error", "category_id", id, "error", err)
		return nil, err
	}
	publish(ctx, s.Events, TopicCatalog, id, map[string]any{
		"type":       "category_deleted",
		"categoryID": id,
	})
	return c, nil
}
