package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/charity/internal/service"
	"github.com/Skotchmaster/charity/internal/transport"
	"github.com/Skotchmaster/charity/pkg/logging"
)

type CategoriesHTTP struct {
	Svc *service.CategoryService
}

func (h *CategoriesHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "categories_list")

	cats, err := h.Svc.List(ctx)
	if err != nil {
		return fail(l, "list_categories_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCategoryResponses(cats))
}

func (h *CategoriesHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "categories_get")

	id, err := parseID(c)
	if err != nil {
		return err
	}
	cat, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(l, "get_category_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCategoryResponse(*cat))
}

func (h *CategoriesHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "categories_add")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "add_category_error", err)
	}
	cat, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(l, "add_category_error", err)
	}
	l.Info("add_category_success", "category_id", cat.ID)
	return c.JSON(http.StatusCreated, transport.NewCategoryResponse(*cat))
}

func (h *CategoriesHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "categories_update")

	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req transport.CategoryUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_category_error", err)
	}
	cat, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return fail(l, "update_category_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCategoryResponse(*cat))
}

func (h *CategoriesHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "categories_delete")

	id, err := parseID(c)
	if err != nil {
		return err
	}
	cat, err := h.Svc.Delete(ctx, id)
	if err != nil {
		return fail(l, "delete_category_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewCategoryResponse(*cat))
}

type InstitutionsHTTP struct {
	Svc *service.InstitutionService
}

func (h *InstitutionsHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "institutions_list")

	list, err := h.Svc.List(ctx)
	if err != nil {
		return fail(l, "list_institutions_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewInstitutionResponses(list))
}

func (h *InstitutionsHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "institutions_get")

	id, err := parseID(c)
	if err != nil {
		return err
	}
	inst, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(l, "get_institution_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewInstitutionResponse(*inst))
}

func (h *InstitutionsHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "institutions_search")

	size, _ := strconv.Atoi(c.QueryParam("size"))
	list, err := h.Svc.Search(ctx, c.QueryParam("q"), size)
	if err != nil {
		return fail(l, "search_institutions_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewInstitutionResponses(list))
}

func (h *InstitutionsHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "institutions_add")

	var req transport.InstitutionRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "add_institution_error", err)
	}
	inst, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(l, "add_institution_error", err)
	}
	l.Info("add_institution_success", "institution_id", inst.ID)
	return c.JSON(http.StatusCreated, transport.NewInstitutionResponse(*inst))
}

func (h *InstitutionsHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "institutions_update")

	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req transport.InstitutionUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_institution_error", err)
	}
	inst, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return fail(l, "update_institution_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewInstitutionResponse(*inst))
}

func (h *InstitutionsHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "institutions_delete")

	id, err := parseID(c)
	if err != nil {
		return err
	}
	inst, err := h.Svc.Delete(ctx, id)
	if err != nil {
		return fail(l, "delete_institution_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewInstitutionResponse(*inst))
}
