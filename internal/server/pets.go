package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oalvarez/petfolio/internal/runtime"
	"github.com/oalvarez/petfolio/internal/store"
)

type PetsHandler struct {
	Store *store.Store
}

func (h *PetsHandler) Register(g *echo.Group, secret []byte) {
	g.Use(runtime.EchoAuthMiddleware(secret))
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:pet_id", h.get)
	g.PUT("/:pet_id", h.update)
	g.DELETE("/:pet_id", h.delete)
}

func ownerID(c echo.Context) string {
	if v, ok := c.Get("user_id").(string); ok {
		return v
	}
	return ""
}

func petResponse(p store.Pet) PetResponse {
	return PetResponse{
		ID:        p.ID,
		Name:      p.Name,
		Species:   p.Species,
		Breed:     p.Breed,
		BirthDate: p.BirthDate,
		PhotoURL:  p.PhotoURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (h *PetsHandler) list(c echo.Context) error {
	pets, err := h.Store.ListPets(c.Request().Context(), ownerID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out := make([]PetResponse, 0, len(pets))
	for _, p := range pets {
		out = append(out, petResponse(p))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PetsHandler) create(c echo.Context) error {
	var req PetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	id, err := h.Store.CreatePet(c.Request().Context(), store.Pet{
		OwnerID:   ownerID(c),
		Name:      req.Name,
		Species:   req.Species,
		Breed:     req.Breed,
		BirthDate: req.BirthDate,
		PhotoURL:  req.PhotoURL,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

func (h *PetsHandler) get(c echo.Context) error {
	p, err := h.Store.GetPet(c.Request().Context(), c.Param("pet_id"), ownerID(c))
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "pet not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, petResponse(p))
}

func (h *PetsHandler) update(c echo.Context) error {
	var req PetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	err := h.Store.UpdatePet(c.Request().Context(), store.Pet{
		ID:        c.Param("pet_id"),
		OwnerID:   ownerID(c),
		Name:      req.Name,
		Species:   req.Species,
		Breed:     req.Breed,
		BirthDate: req.BirthDate,
		PhotoURL:  req.PhotoURL,
	})
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "pet not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

func (h *PetsHandler) delete(c echo.Context) error {
	err := h.Store.DeletePet(c.Request().Context(), c.Param("pet_id"), ownerID(c))
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "pet not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusOK)
}
