// Package handler exposes HTTP handlers for the catalog API.
// This file defines the plant endpoints: list with optional search, create
// and the one-time seed.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/plant-catalog/internal/metrics"
	"github.com/iliyamo/plant-catalog/internal/model"
	"github.com/iliyamo/plant-catalog/internal/queue"
	"github.com/iliyamo/plant-catalog/internal/repository"
	"github.com/iliyamo/plant-catalog/internal/service"
	"github.com/iliyamo/plant-catalog/internal/validation"
)

// defaultListLimit caps GET /api/plants when no limit is given.
const defaultListLimit = 50

// PlantStore is the storage the plant handlers need.  *repository.PlantRepo
// implements it.
type PlantStore interface {
	Create(ctx context.Context, p *model.Plant) error
	List(ctx context.Context, f repository.PlantFilter, limit int64) ([]model.Plant, error)
	Seed(ctx context.Context, samples []model.Plant) ([]model.Plant, error)
}

// EventPublisher receives an event for every stored plant.
// *service.QueuePublisher implements it.
type EventPublisher interface {
	PublishPlantCreated(ctx context.Context, ev queue.PlantCreatedEvent) error
}

// PlantHandler serves the plant endpoints.  Events and Metrics are optional.
type PlantHandler struct {
	Store   PlantStore
	Events  EventPublisher
	Metrics *metrics.Metrics
}

// NewPlantHandler constructs a PlantHandler and panics if store is nil.
// A repository without a database is fine: it reports ErrNotConfigured.
func NewPlantHandler(store PlantStore, events EventPublisher, m *metrics.Metrics) *PlantHandler {
	if store == nil {
		panic("nil store passed to NewPlantHandler")
	}
	return &PlantHandler{Store: store, Events: events, Metrics: m}
}

// SeedResult is the body of POST /api/plants/seed.
type SeedResult struct {
	Inserted int    `json:"inserted"`
	Message  string `json:"message,omitempty"`
}

// ListPlants handles GET /api/plants?q=&featured=&limit=.
func (h *PlantHandler) ListPlants(c echo.Context) error {
	f := repository.PlantFilter{Query: c.QueryParam("q")}

	if raw := c.QueryParam("featured"); raw != "" {
		v, ok := parseBool(raw)
		if !ok {
			return validationFailed(c, validation.NewError([]string{"query", "featured"},
				"value could not be parsed to a boolean", "type_error.bool"))
		}
		f.Featured = &v
	}

	limit := defaultListLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return validationFailed(c, validation.NewError([]string{"query", "limit"},
				"value is not a valid integer", "type_error.integer"))
		}
		if n < 0 {
			return validationFailed(c, validation.NewError([]string{"query", "limit"},
				"ensure this value is greater than or equal to 0", "value_error.number.not_ge"))
		}
		limit = n
	}

	plants, err := h.Store.List(c.Request().Context(), f, int64(limit))
	if err != nil {
		return storageError(c, "list plants", err)
	}
	return c.JSON(http.StatusOK, model.SerializeAll(plants))
}

// CreatePlant handles POST /api/plants.  The payload is validated before the
// database is consulted, so a malformed body gets a 422 even in degraded
// mode.
func (h *PlantHandler) CreatePlant(c echo.Context) error {
	var in model.PlantInput
	if err := c.Bind(&in); err != nil {
		return validationFailed(c, validation.NewError([]string{"body"}, bindMessage(err), "value_error.jsondecode"))
	}
	if err := c.Validate(&in); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			return validationFailed(c, verr)
		}
		return err
	}

	p := in.Plant()
	ctx := c.Request().Context()
	if err := h.Store.Create(ctx, &p); err != nil {
		return storageError(c, "create plant", err)
	}
	if h.Metrics != nil {
		h.Metrics.PlantsCreated.Inc()
	}
	h.publish(c, p, queue.SourceAPI)
	return c.JSON(http.StatusOK, model.Serialize(p))
}

// SeedPlants handles POST /api/plants/seed.  It inserts the sample plants
// only when the collection is empty.
func (h *PlantHandler) SeedPlants(c echo.Context) error {
	inserted, err := h.Store.Seed(c.Request().Context(), model.SamplePlants())
	if err != nil {
		return storageError(c, "seed plants", err)
	}
	if len(inserted) == 0 {
		return c.JSON(http.StatusOK, SeedResult{Inserted: 0, Message: "Already seeded"})
	}
	if h.Metrics != nil {
		h.Metrics.PlantsSeeded.Add(float64(len(inserted)))
	}
	for _, p := range inserted {
		h.publish(c, p, queue.SourceSeed)
	}
	return c.JSON(http.StatusOK, SeedResult{Inserted: len(inserted)})
}

// publish sends a plant.created event.  Failures are logged only; the plant
// is already stored.
func (h *PlantHandler) publish(c echo.Context, p model.Plant, source string) {
	if h.Events == nil {
		return
	}
	if err := h.Events.PublishPlantCreated(c.Request().Context(), service.PlantCreated(p, source)); err != nil {
		c.Logger().Warnf("publish plant.created for %s: %v", p.ID.Hex(), err)
	}
}

// parseBool accepts the usual spellings of a boolean query parameter.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y", "on":
		return true, true
	case "0", "false", "f", "no", "n", "off":
		return false, true
	}
	return false, false
}

func bindMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return fmt.Sprint(he.Message)
	}
	return err.Error()
}
