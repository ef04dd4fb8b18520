package httpapi

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dalildz/dalil/pkg/audit"
	"github.com/dalildz/dalil/pkg/logger"
	"github.com/dalildz/dalil/pkg/validation"
)

const (
	auditFormOpened    = "form.opened"
	auditFormValidated = "form.validated"
	auditFormClosed    = "form.closed"
)

type validateRequest struct {
	Type    validation.SemanticType `json:"type"`
	Value   any                     `json:"value"`
	Context string                  `json:"context"`
}

func (req validateRequest) check() error {
	if strings.TrimSpace(req.Type.String()) == "" {
		return unprocessable(ErrMissingType)
	}
	return nil
}

type objectRequest struct {
	Schema  validation.Schema `json:"schema"`
	Data    map[string]any    `json:"data"`
	Context string            `json:"context"`
}

func (req objectRequest) check() error {
	if len(req.Schema) == 0 {
		return unprocessable(ErrEmptySchema)
	}
	seen := make(map[string]struct{}, len(req.Schema))
	for i, f := range req.Schema {
		if f.Name == "" {
			return unprocessable(fmt.Errorf("%w: schema[%d]", ErrEmptyFieldName, i))
		}
		if strings.TrimSpace(f.Type.String()) == "" {
			return unprocessable(fmt.Errorf("%w: schema[%d]", ErrMissingType, i))
		}
		if _, dup := seen[f.Name]; dup {
			return unprocessable(fmt.Errorf("%w: %s", ErrDuplicateField, f.Name))
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

type formOpenedResponse struct {
	ID string `json:"id"`
}

type formResultsResponse struct {
	ID        string                       `json:"id"`
	Results   map[string]validation.Result `json:"results"`
	CanSubmit bool                         `json:"can_submit"`
}

type formValidateResponse struct {
	validation.SchemaResult
	CanSubmit bool `json:"can_submit"`
}

type fieldResponse struct {
	validation.Result
	Field     string `json:"field"`
	CanSubmit bool   `json:"can_submit"`
}

func (a *API) validate(r *http.Request, req validateRequest) Response {
	if err := req.check(); err != nil {
		return Error(err)
	}
	return JSON(http.StatusOK, a.engine.Validate(validation.Custom(req.Type.String()), req.Value, req.Context))
}

func (a *API) validateObject(r *http.Request, req objectRequest) Response {
	if err := req.check(); err != nil {
		return Error(err)
	}
	return JSON(http.StatusOK, a.engine.ValidateObject(req.Schema, req.Data, req.Context))
}

func (a *API) openForm(r *http.Request) Response {
	id, _ := a.sessions.Open()
	a.recordAudit(r, auditFormOpened, id)
	return JSON(http.StatusCreated, formOpenedResponse{ID: id})
}

func (a *API) formResults(r *http.Request) Response {
	id, form, err := a.form(r)
	if err != nil {
		return Error(err)
	}
	return JSON(http.StatusOK, formResultsResponse{
		ID:        id,
		Results:   form.Results(),
		CanSubmit: form.CanSubmit(),
	})
}

func (a *API) validateField(r *http.Request, req validateRequest) Response {
	_, form, err := a.form(r)
	if err != nil {
		return Error(err)
	}
	if err := req.check(); err != nil {
		return Error(err)
	}

	field := chi.URLParam(r, "field")
	res := form.ValidateField(validation.Custom(req.Type.String()), req.Value, field, req.Context)
	return JSON(http.StatusOK, fieldResponse{Result: res, Field: field, CanSubmit: form.CanSubmit()})
}

func (a *API) validateForm(r *http.Request, req objectRequest) Response {
	id, form, err := a.form(r)
	if err != nil {
		return Error(err)
	}
	if err := req.check(); err != nil {
		return Error(err)
	}

	res := form.ValidateForm(req.Schema, req.Data, req.Context)
	a.recordValidation(r, id, res)
	return JSON(http.StatusOK, formValidateResponse{SchemaResult: res, CanSubmit: form.CanSubmit()})
}

func (a *API) clearField(r *http.Request) Response {
	_, form, err := a.form(r)
	if err != nil {
		return Error(err)
	}
	form.Clear(chi.URLParam(r, "field"))
	return NoContent()
}

func (a *API) clearFields(r *http.Request) Response {
	_, form, err := a.form(r)
	if err != nil {
		return Error(err)
	}
	form.Clear()
	return NoContent()
}

func (a *API) closeForm(r *http.Request) Response {
	id := chi.URLParam(r, "id")
	form, ok := a.sessions.Close(id)
	if !ok {
		return Error(ErrFormNotFound)
	}
	a.recordAudit(r, auditFormClosed, id, audit.WithMetadata(map[string]any{
		"fields":     len(form.Results()),
		"can_submit": form.CanSubmit(),
	}))
	return NoContent()
}

func (a *API) form(r *http.Request) (string, *validation.Form, error) {
	id := chi.URLParam(r, "id")
	form, ok := a.sessions.Get(id)
	if !ok {
		return id, nil, ErrFormNotFound
	}
	return id, form, nil
}

// recordValidation audits a whole-form validation. A form with blocking
// errors is recorded as a failure listing the offending fields.
func (a *API) recordValidation(r *http.Request, formID string, res validation.SchemaResult) {
	invalid := make([]string, 0)
	for name, fieldRes := range res.Results {
		if !fieldRes.Valid {
			invalid = append(invalid, name)
		}
	}
	slices.Sort(invalid)

	result := audit.ResultSuccess
	if !res.Valid {
		result = audit.ResultFailure
	}
	a.recordAudit(r, auditFormValidated, formID,
		audit.WithResult(result),
		audit.WithMetadata(map[string]any{
			"fields":         len(res.Results),
			"invalid_fields": invalid,
		}),
	)
}

func (a *API) recordAudit(r *http.Request, action, formID string, opts ...audit.EventOption) {
	if a.audit == nil {
		return
	}
	opts = append([]audit.EventOption{audit.WithResource("form", formID)}, opts...)
	if err := a.audit.Log(r.Context(), action, opts...); err != nil {
		a.log.WarnContext(r.Context(), "audit log failed",
			logger.Component("httpapi"),
			logger.Event(action),
			logger.FormID(formID),
			logger.Error(err),
		)
	}
}
