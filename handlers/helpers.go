package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/sport-events/middleware"
	"github.com/Dosada05/sport-events/services"
	"github.com/Dosada05/sport-events/validation"
)

type jsonResponse map[string]interface{}

var logger = slog.Default()

// SetLogger задает логгер для ошибок обработчиков.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // Паника, т.к. это ошибка программиста (передан не указатель)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		logger.Error("failed to write error response",
			slog.String("method", r.Method),
			slog.String("uri", r.URL.RequestURI()),
			slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logger.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("uri", r.URL.RequestURI()),
		slog.Any("error", err))
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func failedValidationResponse(w http.ResponseWriter, r *http.Request, errors map[string]string) {
	errorResponse(w, r, http.StatusUnprocessableEntity, errors)
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	message := "the requested resource could not be found"
	errorResponse(w, r, http.StatusNotFound, message)
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs validation.FieldErrors
	if errors.As(err, &fieldErrs) {
		failedValidationResponse(w, r, fieldErrs)
		return
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrParticipantNotFound),
		errors.Is(err, services.ErrPreferenceNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		notFoundResponse(w, r)

	// Конфликты
	case errors.Is(err, services.ErrUserEmailConflict),
		errors.Is(err, services.ErrUserUsernameConflict),
		errors.Is(err, services.ErrPreferenceConflict),
		errors.Is(err, services.ErrAlreadyJoined),
		errors.Is(err, services.ErrEventFull):
		conflictResponse(w, r, err.Error())

	// Бизнес-правила. Неизвестный вид спорта в теле запроса тоже 400.
	case errors.Is(err, services.ErrSportNotFound),
		errors.Is(err, services.ErrEventPast),
		errors.Is(err, services.ErrEventNotUpcoming),
		errors.Is(err, services.ErrNotParticipant),
		errors.Is(err, services.ErrCannotLeave),
		errors.Is(err, services.ErrInvalidStatusTransition),
		errors.Is(err, services.ErrEventNotCompleted),
		errors.Is(err, services.ErrRatingNotAllowed),
		errors.Is(err, services.ErrStartInPast),
		errors.Is(err, services.ErrEndBeforeStart),
		errors.Is(err, services.ErrMinExceedsMax),
		errors.Is(err, services.ErrPriceRequired),
		errors.Is(err, services.ErrInvalidFilter):
		badRequestResponse(w, r, err)

	// Ошибки авторизации/доступа
	case errors.Is(err, services.ErrInvalidCredentials):
		unauthorizedResponse(w, r, err.Error())
	case errors.Is(err, services.ErrUserInactive),
		errors.Is(err, services.ErrForbiddenOperation):
		forbiddenResponse(w, r, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}

func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return 0, fmt.Errorf("missing %s in URL path", paramName)
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid %s value: %d", paramName, id)
	}
	return id, nil
}

// --- Параметры строки запроса. Отсутствующий параметр дает nil. ---

func queryInt(qs url.Values, key string) (*int, error) {
	s := qs.Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("query parameter %s must be an integer", key)
	}
	return &v, nil
}

func queryFloat(qs url.Values, key string) (*float64, error) {
	s := qs.Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("query parameter %s must be a number", key)
	}
	return &v, nil
}

func queryBool(qs url.Values, key string) (*bool, error) {
	s := qs.Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("query parameter %s must be a boolean", key)
	}
	return &v, nil
}

func queryTime(qs url.Values, key string) (*time.Time, error) {
	s := qs.Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("query parameter %s must be an RFC3339 timestamp", key)
	}
	return &v, nil
}

func requireUserID(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return 0, false
	}
	return userID, true
}
