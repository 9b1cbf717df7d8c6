package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/xerrors"

	"github.com/x-xyz/catalog/base/ctx"
	"github.com/x-xyz/catalog/base/delivery"
	"github.com/x-xyz/catalog/base/log"
	"github.com/x-xyz/catalog/domain"
	"github.com/x-xyz/catalog/domain/catalog"
)

const msgCatalogUnavailable = "failed to fetch catalog"

type handler struct {
	pipeline catalog.PipelineUseCase
}

type catalogQuery struct {
	Tab string `query:"tab" validate:"omitempty,oneof=newest on-sale mintables"`
}

type catalogResp struct {
	Status    catalog.Status         `json:"status"`
	UpdatedAt *time.Time             `json:"updatedAt"`
	RunId     string                 `json:"runId,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Items     []*catalog.Collectible `json:"items"`
}

// New registers GET /catalog
func New(e *echo.Echo, pipeline catalog.PipelineUseCase) {
	h := &handler{pipeline}
	g := e.Group("/catalog")
	g.GET("", h.getCatalog)
}

func (h *handler) getCatalog(c echo.Context) error {
	cont, ok := c.Get("ctx").(ctx.Ctx)
	if !ok {
		cont = ctx.Background()
	}

	q := catalogQuery{}
	if err := c.Bind(&q); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}
	if c.Echo().Validator != nil {
		if err := c.Validate(q); err != nil {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, xerrors.Errorf("%s: %w", err, domain.ErrBadParamInput))
		}
	}
	tab, err := catalog.ParseTab(q.Tab)
	if err != nil {
		cont.WithFields(log.Fields{"tab": q.Tab, "err": err}).Debug("catalog.ParseTab failed")
		return delivery.MakeJsonResp(c, http.StatusBadRequest, xerrors.Errorf("%s %q: %w", err, q.Tab, domain.ErrBadParamInput))
	}

	view := h.pipeline.Select(tab)
	res := catalogResp{
		Status: view.Status,
		RunId:  view.RunId,
		Items:  view.Collectibles,
	}
	if res.Items == nil {
		res.Items = []*catalog.Collectible{}
	}
	if !view.UpdatedAt.IsZero() {
		updatedAt := view.UpdatedAt
		res.UpdatedAt = &updatedAt
	}

	switch view.Status {
	case catalog.StatusLoading:
		return delivery.MakeJsonResp(c, http.StatusServiceUnavailable, res)
	case catalog.StatusError:
		cont.WithFields(log.Fields{"runId": view.RunId, "err": view.Err}).Warn("serving failed catalog")
		res.Message = msgCatalogUnavailable
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, res)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}
