package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/MonkyMars/gecho"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/CLDWare/csi-survey-backend/internal/apperrors"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so messages match what the client sent
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeBody reads a JSON body into dst and validates it.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return apperrors.Validation("", "invalid JSON body: %v", err)
	}

	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return apperrors.Validation(fe.Field(), "%s", describe(fe))
		}
		return apperrors.Validation("", "%v", err)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}

// pathID parses a positive integer path parameter.
func pathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 0)
	if err != nil || id == 0 {
		return 0, apperrors.Validation(name, "must be a positive integer, got '%s'", r.PathValue(name))
	}
	return uint(id), nil
}

// writeError sends the status matching the error's kind. Unclassified errors
// are logged and hidden behind a 500.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		gecho.BadRequest(w).WithMessage(err.Error()).Send()
	case errors.Is(err, apperrors.ErrNotFound):
		gecho.NotFound(w).WithMessage(err.Error()).Send()
	case errors.Is(err, apperrors.ErrConflict):
		gecho.NewErr(w).WithStatus(http.StatusConflict).WithMessage(err.Error()).Send()
	case errors.Is(err, apperrors.ErrRateLimited):
		retryAfter, _ := apperrors.RetryAfter(err)
		seconds := int(retryAfter.Seconds())
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		gecho.NewErr(w).
			WithStatus(http.StatusTooManyRequests).
			WithMessage(fmt.Sprintf("Too many requests, please try again in %d seconds", seconds)).
			Send()
	case errors.Is(err, apperrors.ErrChannelNotConfigured):
		log.Error("Export channel is not configured")
		gecho.InternalServerError(w).WithMessage("Export channel is not configured").Send()
	default:
		log.Error("Request failed", zap.Error(err))
		gecho.InternalServerError(w).Send()
	}
}
