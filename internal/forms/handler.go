package forms

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-erp/meridian/internal/docform"
	"github.com/meridian-erp/meridian/internal/gateway"
	"github.com/meridian-erp/meridian/internal/platform/httpx"
)

// Handler exposes form sessions over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	var req OpenFormRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}

	var from *DeriveRef
	if req.DerivedFrom != nil {
		from = &DeriveRef{DocumentNumber: req.DerivedFrom.DocumentNumber}
	}

	sess, err := h.service.Open(r.Context(), req.DocType, from)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, h.view(sess, nil))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Get(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.view(sess, nil))
}

func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Discard(r.Context(), chi.URLParam(r, "formID")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PatchHeader(w http.ResponseWriter, r *http.Request) {
	var req HeaderPatchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}

	sess, err := h.service.PatchHeader(r.Context(), chi.URLParam(r, "formID"), patch)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.view(sess, nil))
}

func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	sess, _, err := h.service.AddLine(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, h.view(sess, nil))
}

func (h *Handler) PatchLine(w http.ResponseWriter, r *http.Request) {
	var req LinePatchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}

	sess, _, err := h.service.PatchLine(r.Context(), chi.URLParam(r, "formID"), chi.URLParam(r, "lineID"), patch)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.view(sess, nil))
}

func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.RemoveLine(r.Context(), chi.URLParam(r, "formID"), chi.URLParam(r, "lineID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.view(sess, nil))
}

func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	sess, errs, err := h.service.Validate(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.view(sess, errs))
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitFormRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
			return
		}
		if err := h.validate.Struct(req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
			return
		}
	}

	attachments := make([]gateway.Attachment, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		attachments = append(attachments, gateway.Attachment{
			FileName:    a.FileName,
			ContentType: a.ContentType,
			Data:        a.Data,
		})
	}

	sess, err := h.service.Submit(r.Context(), chi.URLParam(r, "formID"), attachments)
	if err != nil {
		switch {
		case errors.Is(err, docform.ErrValidationFailed):
			// Return the form with its error map so the client can render it.
			sess.mu.Lock()
			errs, _ := sess.Form.Validate()
			view := newFormView(sess, errs)
			sess.mu.Unlock()
			httpx.JSON(w, http.StatusUnprocessableEntity, view)
		case errors.Is(err, gateway.ErrRejected):
			httpx.Problem(w, http.StatusBadGateway, "Submission Rejected", err.Error())
		default:
			h.respondError(w, err)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, h.view(sess, nil))
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	sess, err := h.service.Get(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	sess.mu.Lock()
	data, err := ExportXLSX(sess)
	sess.mu.Unlock()
	if err != nil {
		h.logger.Error("export failed", "error", err, "form_id", sess.ID)
		httpx.Problem(w, http.StatusInternalServerError, "Export Failed", "could not build workbook")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="draft-`+sess.ID+`.xlsx"`)
	_, _ = w.Write(data)
}

func (h *Handler) view(sess *Session, errs docform.ErrorMap) FormView {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return newFormView(sess, errs)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "form session not found")
	case errors.Is(err, docform.ErrUnknownDocType):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	case errors.Is(err, docform.ErrLineNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "line not found")
	case errors.Is(err, docform.ErrInvalidTransition):
		httpx.Problem(w, http.StatusConflict, "Invalid State", err.Error())
	case errors.Is(err, docform.ErrSourceKindMismatch):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	case errors.Is(err, gateway.ErrSourceUnavailable):
		httpx.Problem(w, http.StatusBadGateway, "Source Unavailable", err.Error())
	default:
		h.logger.Error("request failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "unexpected error")
	}
}
