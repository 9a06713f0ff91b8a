package service

import (
	"context"
	"strings"

	"github.com/Skotchmaster/charity/internal/domain"
	"github.com/Skotchmaster/charity/internal/transport"
	"github.com/Skotchmaster/charity/pkg/logging"
)

const defaultSearchLimit = 10

type InstitutionService struct {
	Store  InstitutionStore
	Index  InstitutionIndex
	Events Publisher
}

func (s *InstitutionService) List(ctx context.Context) ([]domain.Institution, error) {
	return s.Store.ListInstitutions(ctx)
}

func (s *InstitutionService) Get(ctx context.Context, id uint) (*domain.Institution, error) {
	return s.Store.GetInstitution(ctx, id)
}

func (s *InstitutionService) Create(ctx context.Context, req transport.InstitutionRequest) (*domain.Institution, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	inst := &domain.Institution{Name: req.Name, Description: req.Description}
	if err := s.Store.CreateInstitution(ctx, inst); err != nil {
		return nil, err
	}
	s.reindex(ctx, *inst)
	publish(ctx, s.Events, TopicCatalog, inst.ID, map[string]any{
		"type":          "institution_created",
		"institutionID": inst.ID,
		"name":          inst.Name,
	})
	return inst, nil
}

func (s *InstitutionService) Update(ctx context.Context, id uint, req transport.InstitutionUpdateRequest) (*domain.Institution, error) {
	inst, err := s.Store.GetInstitution(ctx, id)
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
	if req.Description.Present() {
		checkVar(verr, "description", req.Description.Value, "max=1000")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	changed := domain.Apply(&inst.Name, req.Name)
	if req.Description.Null && inst.Description != "" {
		inst.Description = ""
		changed = true
	}
	if domain.Apply(&inst.Description, req.Description) {
		changed = true
	}
	if !changed {
		return inst, nil
	}

	if err := s.Store.SaveInstitution(ctx, inst); err != nil {
		return nil, err
	}
	s.reindex(ctx, *inst)
	publish(ctx, s.Events, TopicCatalog, inst.ID, map[string]any{
		"type":          "institution_updated",
		"institutionID": inst.ID,
		"name":          inst.Name,
	})
	return inst, nil
}

func (s *InstitutionService) Delete(ctx context.Context, id uint) (*domain.Institution, error) {
	inst, err := s.Store.GetInstitution(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Store.DeleteInstitution(ctx, id); err != nil {
		return nil, err
	}
	if s.Index != nil {
		if err := s.Index.Remove(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("index_remove_failed", "institution_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, TopicCatalog, id, map[string]any{
		"type":          "institution_deleted",
		"institutionID": id,
	})
	return inst, nil
}

// Search queries the index when configured and falls back to the store.
func (s *InstitutionService) Search(ctx context.Context, q string, limit int) ([]domain.Institution, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fieldError("q", "must not be blank")
	}
	if limit <= 0 || limit > 100 {
		limit = defaultSearchLimit
	}

	if s.Index != nil {
		hits, err := s.Index.Search(ctx, q, limit)
		if err == nil {
			return hits, nil
		}
		logging.FromContext(ctx).Warn("index_search_failed", "query", q, "error", err)
	}
	return s.Store.SearchInstitutions(ctx, q, limit)
}

// Reindex pushes every stored institution into the index.
func (s *InstitutionService) Reindex(ctx context.Context) (int, error) {
	if s.Index == nil {
		return 0, nil
	}
	list, err := s.Store.ListInstitutions(ctx)
	if err != nil {
		return 0, err
	}
	for _, inst := range list {
		if err := s.Index.Index(ctx, inst); err != nil {
			return 0, err
		}
	}
	return len(list), nil
}

func (s *InstitutionService) reindex(ctx context.Context, inst domain.Institution) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, inst); err != nil {
		logging.FromContext(ctx).Warn("index_failed", "institution_id", inst.ID, "error", err)
	}
}
