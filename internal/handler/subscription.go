package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/ferdianp/subtrack/internal/config"
	"github.com/ferdianp/subtrack/internal/domain"
	"github.com/ferdianp/subtrack/internal/service"
	customError "github.com/ferdianp/subtrack/pkg/errors"
	"github.com/ferdianp/subtrack/pkg/response"
)

type SubscriptionHandler struct {
	service   *service.SubscriptionService
	reminders *service.ReminderService
	cfg       *config.Config
	validator *validator.Validate
}

func NewSubscriptionHandler(svc *service.SubscriptionService, reminders *service.ReminderService, cfg *config.Config) *SubscriptionHandler {
	return &SubscriptionHandler{
		service:   svc,
		reminders: reminders,
		cfg:       cfg,
		validator: validator.New(),
	}
}

func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	sub, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.Created(w, sub)
}

func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.service.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.Success(w, subs)
}

func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.subscriptionID(w, r)
	if !ok {
		return
	}

	sub, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.Success(w, sub)
}

func (h *SubscriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.subscriptionID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	sub, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.Success(w, sub)
}

func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.subscriptionID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.NoContent(w)
}

func (h *SubscriptionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	target, ok := h.targetCurrency(w, r)
	if !ok {
		return
	}

	report, err := h.service.Stats(r.Context(), target)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.Success(w, report)
}

func (h *SubscriptionHandler) Trends(w http.ResponseWriter, r *http.Request) {
	months := 0
	if raw := r.URL.Query().Get("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.BadRequest(w, "months must be a positive integer", err)
			return
		}
		months = parsed
	}

	target, ok := h.targetCurrency(w, r)
	if !ok {
		return
	}

	series, err := h.service.Trends(r.Context(), target, months)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.Success(w, series)
}

func (h *SubscriptionHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	days := -1 // service substitutes the configured window
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.BadRequest(w, "days must be a non-negative integer", err)
			return
		}
		days = parsed
	}

	upcoming, err := h.service.Upcoming(r.Context(), days)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.Success(w, upcoming)
}

func (h *SubscriptionHandler) NextMonthForecast(w http.ResponseWriter, r *http.Request) {
	target, ok := h.targetCurrency(w, r)
	if !ok {
		return
	}

	forecast, err := h.service.NextMonthForecast(r.Context(), target)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.Success(w, forecast)
}

func (h *SubscriptionHandler) CheckReminders(w http.ResponseWriter, r *http.Request) {
	digest, err := h.reminders.CheckReminders(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.Success(w, digest)
}

func (h *SubscriptionHandler) subscriptionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid subscription ID", err)
		return uuid.Nil, false
	}
	return id, true
}

// targetCurrency resolves the currency query parameter, falling back to the
// configured default. Unknown codes are rejected here; letting them through
// would create stats cache keys the write-path invalidation never deletes.
func (h *SubscriptionHandler) targetCurrency(w http.ResponseWriter, r *http.Request) (domain.Currency, bool) {
	raw := r.URL.Query().Get("currency")
	if raw == "" {
		return h.cfg.DefaultCurrency(), true
	}

	target := domain.Currency(strings.ToUpper(raw))
	for _, c := range domain.Currencies() {
		if target == c {
			return target, true
		}
	}

	response.BadRequest(w, fmt.Sprintf("currency must be one of %v", domain.Currencies()), nil)
	return "", false
}

func (h *SubscriptionHandler) writeServiceError(w http.ResponseWriter, err error) {
	var businessErr *customError.BusinessError
	if errors.As(err, &businessErr) {
		switch businessErr.Code {
		case customError.ErrCodeSubscriptionNotFound:
			response.NotFound(w, businessErr.Message)
			return
		case customError.ErrCodeInvalidCycleConfiguration, customError.ErrCodeInvalidAmount:
			response.BadRequest(w, businessErr.Message, businessErr.Err)
			return
		}
	}

	response.InternalServerError(w, "Internal server error", err)
}
