package server

import (
	"errors"
	"net/http"

	"github.com/gorhill/cronexpr"
	"github.com/labstack/echo/v4"

	"github.com/oalvarez/petfolio/internal/runtime"
	"github.com/oalvarez/petfolio/internal/store"
)

// RecordsHandler serves pet-scoped health records: documents, vaccinations
// and meals.
type RecordsHandler struct {
	Store *store.Store
}

func (h *RecordsHandler) Register(g *echo.Group, secret []byte) {
	g.Use(runtime.EchoAuthMiddleware(secret))
	g.GET("/:pet_id/documents", h.listDocuments)
	g.POST("/:pet_id/documents", h.addDocument)
	g.DELETE("/:pet_id/documents/:doc_id", h.deleteDocument)
	g.GET("/:pet_id/vaccinations", h.listVaccinations)
	g.POST("/:pet_id/vaccinations", h.addVaccination)
	g.PUT("/:pet_id/vaccinations/:vac_id", h.updateVaccination)
	g.DELETE("/:pet_id/vaccinations/:vac_id", h.deleteVaccination)
	g.GET("/:pet_id/meals", h.listMeals)
	g.POST("/:pet_id/meals", h.addMeal)
	g.PUT("/:pet_id/meals/:meal_id", h.updateMeal)
	g.DELETE("/:pet_id/meals/:meal_id", h.deleteMeal)
}

// requirePet gates every record route on pet ownership.
func (h *RecordsHandler) requirePet(c echo.Context) (string, error) {
	petID := c.Param("pet_id")
	err := h.Store.VerifyPetOwnership(c.Request().Context(), petID, ownerID(c))
	if errors.Is(err, store.ErrNotFound) {
		return "", echo.NewHTTPError(http.StatusNotFound, "pet not found")
	}
	if err != nil {
		return "", echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return petID, nil
}

func (h *RecordsHandler) listDocuments(c echo.Context) error {
	petID, err := h.requirePet(c)
	if err != nil {
		return err
	}
	docs, err := h.Store.ListPetDocuments(c.Request().Context(), petID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, DocumentResponse{ID: d.ID, URL: d.URL, FileName: d.FileName, FileType: d.FileType, UploadedAt: d.UploadedAt})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RecordsHandler) addDocument(c echo.Context) error {
	petID, err := h.requirePet(c)
	if err != nil {
		return err
	}
	var req DocumentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.URL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}
	id, err := h.Store.AddPetDocument(c.Request().Context(), store.PetDocument{
		PetID:    petID,
		URL:      req.URL,
		FileName: req.FileName,
		FileType: req.FileType,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

func (h *RecordsHandler) deleteDocument(c echo.Context) error {
	petID, err := h.requirePet(c)
	if err != nil {
		return err
	}
	err = h.Store.DeletePetDocument(c.Request().Context(), c.Param("doc_id"), petID)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "document not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

func (h *RecordsHandler) listVaccinations(c echo.Context) error {
	petID, err := h.requirePet(c)
	if err != nil {
		return err
	}
	vacs, err := h.Store.ListVaccinations(c.Request().Context(), petID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out := make([]VaccinationResponse, 0, len(vacs))
	for _, v := range vacs {
		out = append(out, VaccinationResponse{ID: v.ID, Name: v.Name, AdministeredAt: v.AdministeredAt, NextDue: v.NextDue, Notes: v.Notes})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RecordsHandler) addVaccination(c echo.Context) error {
	petID, err := h.requirePet(c)
	if err != nil {
		return err
	}
	var req VaccinationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	id, err := h.Store.CreateVaccination(c.Request().Context(), store.Vaccination{
		PetID:          petID,
		Name:           req.Name,
		AdministeredAt: req.AdministeredAt,
		NextDue:        req.NextDue,
		Notes:          req.Notes,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

func (h *RecordsHandler) updateVaccination(c echo.Context) error {
	petID, err := h.requirePet(c)
	if err != nil {
		return err
	}
	var req VaccinationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	err = h.Store.UpdateVaccination(c.Request().Context(), store.Vaccination{
		ID:             c.Param("vac_id"),
		PetID:          petID,
		Name:           req.Name,
		AdministeredAt: req.AdministeredAt,
		NextDue:        req.NextDue,
		Notes:          req.Notes,
	})
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "vaccination not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

func (h *RecordsHandler) deleteVaccination(c echo.Context) error {
	petID, err := h.requirePet(c)
	if err != nil {
		return err
	}
	err = h.Store.DeleteVaccination(c.Request().Context(), c.Param("vac_id"), petID)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "vaccination not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

func (h *RecordsHandler) listMeals(c echo.Context) error {
	petID, err := h.requirePet(c)
	if err != nil {
		return err
	}
	meals, err := h.Store.ListMeals(c.Request().Context(), petID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out := make([]MealResponse, 0, len(meals))
	for _, m := range meals {
		out = append(out, MealResponse{ID: m.ID, Name: m.Name, FoodType: m.FoodType, AmountGrams: m.AmountGrams, FedAt: m.FedAt, Notes: m.Notes})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RecordsHandler) addMeal(c echo.Context) error {
	petID, err := h.requirePet(c)
	if err != nil {
		return err
	}
	var req MealRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	id, err := h.Store.CreateMeal(c.Request().Context(), store.Meal{
		PetID:       petID,
		Name:        req.Name,
		FoodType:    req.FoodType,
		AmountGrams: req.AmountGrams,
		FedAt:       req.FedAt,
		Notes:       req.Notes,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

func (h *RecordsHandler) updateMeal(c echo.Context) error {
	petID, err := h.requirePet(c)
	if err != nil {
		return err
	}
	var req MealRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	err = h.Store.UpdateMeal(c.Request().Context(), store.Meal{
		ID:          c.Param("meal_id"),
		PetID:       petID,
		Name:        req.Name,
		FoodType:    req.FoodType,
		AmountGrams: req.AmountGrams,
		FedAt:       req.FedAt,
		Notes:       req.Notes,
	})
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "meal not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

func (h *RecordsHandler) deleteMeal(c echo.Context) error {
	petID, err := h.requirePet(c)
	if err != nil {
		return err
	}
	err = h.Store.DeleteMeal(c.Request().Context(), c.Param("meal_id"), petID)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "meal not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

// RemindersHandler serves owner-scoped reminders.
type RemindersHandler struct {
	Store *store.Store
}

func (h *RemindersHandler) Register(g *echo.Group, secret []byte) {
	g.Use(runtime.EchoAuthMiddleware(secret))
	g.GET("", h.list)
	g.POST("", h.create)
	g.PUT("/:reminder_id", h.update)
	g.DELETE("/:reminder_id", h.delete)
}

func reminderResponse(r store.Reminder) ReminderResponse {
	return ReminderResponse{
		ID:          r.ID,
		PetID:       r.PetID,
		Title:       r.Title,
		DueAt:       r.DueAt,
		Schedule:    r.Schedule,
		LastFiredAt: r.LastFiredAt,
		CreatedAt:   r.CreatedAt,
	}
}

func (h *RemindersHandler) list(c echo.Context) error {
	rems, err := h.Store.ListReminders(c.Request().Context(), ownerID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out := make([]ReminderResponse, 0, len(rems))
	for _, r := range rems {
		out = append(out, reminderResponse(r))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RemindersHandler) create(c echo.Context) error {
	var req ReminderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Title == "" || req.PetID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "pet_id and title are required")
	}
	if err := validSchedule(req.Schedule); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.Store.VerifyPetOwnership(c.Request().Context(), req.PetID, ownerID(c)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "pet not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	id, err := h.Store.CreateReminder(c.Request().Context(), store.Reminder{
		PetID:    req.PetID,
		Title:    req.Title,
		DueAt:    req.DueAt,
		Schedule: req.Schedule,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": id})
}

func (h *RemindersHandler) update(c echo.Context) error {
	var req ReminderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := validSchedule(req.Schedule); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	err := h.Store.UpdateReminder(c.Request().Context(), ownerID(c), store.Reminder{
		ID:       c.Param("reminder_id"),
		Title:    req.Title,
		DueAt:    req.DueAt,
		Schedule: req.Schedule,
	})
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "reminder not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

func (h *RemindersHandler) delete(c echo.Context) error {
	err := h.Store.DeleteReminder(c.Request().Context(), c.Param("reminder_id"), ownerID(c))
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "reminder not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

func validSchedule(spec string) error {
	if spec == "" || spec == "@daily" || spec == "@hourly" {
		return nil
	}
	if _, err := cronexpr.Parse(spec); err != nil {
		return errors.New("invalid cron schedule")
	}
	return nil
}

// NotificationsHandler serves the user's notification feed.
type NotificationsHandler struct {
	Store *store.Store
}

func (h *NotificationsHandler) Register(g *echo.Group, secret []byte) {
	g.Use(runtime.EchoAuthMiddleware(secret))
	g.GET("", h.list)
	g.PUT("/:notification_id/read", h.markRead)
	g.DELETE("/:notification_id", h.delete)
}

func (h *NotificationsHandler) list(c echo.Context) error {
	ns, err := h.Store.ListNotifications(c.Request().Context(), ownerID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	out := make([]NotificationResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, NotificationResponse{ID: n.ID, Title: n.Title, Body: n.Body, Read: n.Read, CreatedAt: n.CreatedAt})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *NotificationsHandler) markRead(c echo.Context) error {
	err := h.Store.MarkNotificationRead(c.Request().Context(), c.Param("notification_id"), ownerID(c))
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "notification not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

func (h *NotificationsHandler) delete(c echo.Context) error {
	err := h.Store.DeleteNotification(c.Request().Context(), c.Param("notification_id"), ownerID(c))
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "notification not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusOK)
}
