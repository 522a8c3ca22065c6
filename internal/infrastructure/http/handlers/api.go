// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/pantrymatch/server/internal/infrastructure/http/middleware"
	"github.com/pantrymatch/server/internal/ports/inbound"
	"github.com/pantrymatch/server/pkg/errors"
)

const maxBodyBytes = 1 << 20

// Options holds the request limits of the API
type Options struct {
	DefaultMaxResults int
	MaxResultsLimit   int
}

// APIHandlers handles REST API requests
type APIHandlers struct {
	service  inbound.SuggestionService
	validate *validator.Validate
	opts     Options
	logger   *zap.Logger
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(service inbound.SuggestionService, opts Options, logger *zap.Logger) *APIHandlers {
	if opts.MaxResultsLimit <= 0 {
		opts.MaxResultsLimit = 50
	}
	if opts.DefaultMaxResults <= 0 || opts.DefaultMaxResults > opts.MaxResultsLimit {
		opts.DefaultMaxResults = min(10, opts.MaxResultsLimit)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)
	// whitespace-only names normalize to an empty key
	_ = validate.RegisterValidation("notblank", notBlank)

	return &APIHandlers{
		service:  service,
		validate: validate,
		opts:     opts,
		logger:   logger.Named("api"),
	}
}

// SuggestRecipes handles POST /api/v1/recipes/suggest
func (h *APIHandlers) SuggestRecipes(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	if appErr := h.decode(w, r, &req); appErr != nil {
		h.writeError(w, r, appErr)
		return
	}
	if appErr := h.validateSuggest(&req); appErr != nil {
		h.writeError(w, r, appErr)
		return
	}

	maxResults := h.opts.DefaultMaxResults
	if req.MaxResults != nil {
		maxResults = *req.MaxResults
	}

	suggestions, err := h.service.SuggestRecipes(r.Context(), req.toItems(), inbound.SuggestOptions{MaxResults: maxResults})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, SuggestResponse{Recipes: toSuggestedRecipes(suggestions)})
}

// GetRecipe handles GET /api/v1/recipes/{id}
func (h *APIHandlers) GetRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.service.GetRecipe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toRecipeResponse(recipe))
}

// ListIngredients handles GET /api/v1/ingredients
func (h *APIHandlers) ListIngredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.service.ListIngredients(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, IngredientListResponse{Ingredients: toIngredientResults(ingredients)})
}

func (h *APIHandlers) decode(w http.ResponseWriter, r *http.Request, dst interface{}) *errors.AppError {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		var typeErr *json.UnmarshalTypeError
		switch {
		case stderrors.Is(err, io.EOF):
			return errors.NewBadRequestError("Request body is required")
		case stderrors.As(err, &maxErr):
			return errors.NewBadRequestError(fmt.Sprintf("Request body exceeds %d bytes", maxBodyBytes))
		case stderrors.As(err, &typeErr):
			return errors.NewValidationErrors([]errors.ValidationError{{
				Field:   typeErr.Field,
				Tag:     "type",
				Message: fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type),
			}})
		default:
			return errors.NewBadRequestError("Malformed JSON body")
		}
	}
	if dec.More() {
		return errors.NewBadRequestError("Request body must contain a single JSON object")
	}
	return nil
}

func (h *APIHandlers) validateSuggest(req *SuggestRequest) *errors.AppError {
	var fields []errors.ValidationError

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !stderrors.As(err, &verrs) {
			return errors.Wrap(err, "validate request")
		}
		for _, fe := range verrs {
			fields = append(fields, toValidationError(fe))
		}
	}

	if req.MaxResults != nil {
		rule := fmt.Sprintf("min=1,max=%d", h.opts.MaxResultsLimit)
		if err := h.validate.Var(*req.MaxResults, rule); err != nil {
			fields = append(fields, errors.ValidationError{
				Field:   "maxResults",
				Value:   *req.MaxResults,
				Tag:     "range",
				Message: fmt.Sprintf("maxResults must be between 1 and %d", h.opts.MaxResultsLimit),
			})
		}
	}

	if len(fields) > 0 {
		return errors.NewValidationErrors(fields)
	}
	return nil
}

func toValidationError(fe validator.FieldError) errors.ValidationError {
	field := strings.TrimPrefix(fe.Namespace(), "SuggestRequest.")

	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", field)
	case "max":
		msg = fmt.Sprintf("%s must be at most %s", field, lengthOrValue(fe))
	case "notblank":
		msg = fmt.Sprintf("%s must not be blank", field)
	case "gte":
		msg = fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	default:
		msg = fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}

	return errors.ValidationError{
		Field:   field,
		Value:   fe.Value(),
		Tag:     fe.Tag(),
		Message: msg,
	}
}

func lengthOrValue(fe validator.FieldError) string {
	switch fe.Kind() {
	case reflect.String:
		return fe.Param() + " characters"
	case reflect.Slice:
		return fe.Param() + " entries"
	default:
		return fe.Param()
	}
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// writeJSON writes a JSON response
func (h *APIHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError maps err to the error envelope. Causes are logged, never sent.
func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.Wrap(err, "An unexpected error occurred")
	}

	fields := []zap.Field{
		zap.String("request_id", chimiddleware.GetReqID(r.Context())),
		zap.String("code", string(appErr.Code)),
		zap.String("details", appErr.Details),
	}
	if appErr.Cause != nil {
		fields = append(fields, zap.Error(appErr.Cause))
	}
	if appErr.StatusCode() >= http.StatusInternalServerError {
		h.logger.Error("Request failed", fields...)
	} else {
		h.logger.Debug("Request rejected", fields...)
	}

	middleware.WriteError(w, r, appErr)
}
