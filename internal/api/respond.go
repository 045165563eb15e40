package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"condoflow/internal/access"
	"condoflow/internal/booking"
	"condoflow/internal/listview"
	"condoflow/internal/repository"
	"condoflow/internal/service"
	"condoflow/internal/session"
)

// Error codes of the JSON error body.
const (
	codeBadRequest      = "bad_request"
	codeValidation      = "validation_error"
	codeConflict        = "conflict"
	codeUnauthorized    = "unauthorized"
	codeForbidden       = "forbidden"
	codeNotFound        = "not_found"
	codeInternal        = "internal_error"
	codeTooManyRequests = "too_many_requests"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// requestError is a malformed request: bad JSON, bad path or query values.
type requestError struct {
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequest(format string, args ...any) error {
	return &requestError{message: fmt.Sprintf(format, args...)}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// fail maps a service error to a status code and writes it.
func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		reqErr   *requestError
		inputErr *service.InputError
		fields   validator.ValidationErrors
	)

	if ve, ok := booking.AsValidation(err); ok {
		status, code := http.StatusUnprocessableEntity, codeValidation
		if errors.Is(err, booking.ErrTimeConflict) ||
			errors.Is(err, booking.ErrApprovedConflict) ||
			errors.Is(err, booking.ErrInvalidTransition) {
			status, code = http.StatusConflict, codeConflict
		}
		writeError(w, status, code, ve.Message)
		return
	}

	switch {
	case errors.As(err, &reqErr):
		writeError(w, http.StatusBadRequest, codeBadRequest, reqErr.message)
	case errors.As(err, &fields):
		writeError(w, http.StatusUnprocessableEntity, codeValidation, fieldMessage(fields[0]))
	case errors.As(err, &inputErr):
		writeError(w, http.StatusUnprocessableEntity, codeValidation, inputErr.Message)
	case access.IsAccessDenied(err):
		writeError(w, http.StatusForbidden, codeForbidden, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "Registro não encontrado.")
	case errors.Is(err, booking.ErrUnknownTab):
		writeError(w, http.StatusBadRequest, codeBadRequest, "Aba desconhecida.")
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, session.ErrInvalidCredentials):
		msg, _ := session.Message(err)
		writeError(w, http.StatusUnauthorized, codeUnauthorized, msg)
	case errors.Is(err, session.ErrEmailTaken):
		msg, _ := session.Message(err)
		writeError(w, http.StatusConflict, codeConflict, msg)
	default:
		if msg, ok := session.Message(err); ok {
			writeError(w, http.StatusUnprocessableEntity, codeValidation, msg)
			return
		}
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, codeInternal, "Erro interno. Tente novamente.")
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("O campo %s é obrigatório.", fe.Field())
	case "max":
		return fmt.Sprintf("O campo %s excede o tamanho máximo (%s).", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("O campo %s deve ser uma URL válida.", fe.Field())
	case "oneof":
		return fmt.Sprintf("O campo %s deve ser um de: %s.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("O campo %s é inválido.", fe.Field())
	}
}

// decode reads a JSON body into v, rejecting unknown fields, and runs the
// struct validation tags.
func (s *HTTPServer) decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("Corpo da requisição vazio.")
		}
		return badRequest("JSON inválido: %v", err)
	}
	return s.validate.Struct(v)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("Identificador inválido.")
	}
	return id, nil
}

// listQuery reads q, sort, dir, page, page_size and the filters spec knows
// from the query string.
func listQuery[T any](r *http.Request, spec *listview.Spec[T]) (listview.Query, error) {
	values := r.URL.Query()
	q := listview.Query{
		Search:  values.Get("q"),
		SortKey: values.Get("sort"),
		SortDir: listview.Direction(strings.ToLower(values.Get("dir"))),
	}

	for key := range spec.Filters {
		if v := values.Get(key); v != "" {
			if q.Filters == nil {
				q.Filters = make(map[string]string)
			}
			q.Filters[key] = v
		}
	}

	var err error
	if q.Page, err = intParam(values.Get("page")); err != nil {
		return q, badRequest("Página inválida.")
	}
	if q.PageSize, err = intParam(values.Get("page_size")); err != nil {
		return q, badRequest("Tamanho de página inválido.")
	}
	if err := spec.Validate(q); err != nil {
		return q, badRequest("%s", err.Error())
	}
	return q, nil
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// unitID returns the raw unit id; unit ids are strings.
func unitID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func writeAttachment(w http.ResponseWriter, filename, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
