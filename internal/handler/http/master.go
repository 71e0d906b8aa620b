package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/master"
	"github.com/cmlabs-hris/hris-ledger/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type MasterHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type masterHandlerImpl struct {
	masterService master.MasterService
}

func NewMasterHandler(masterService master.MasterService) MasterHandler {
	return &masterHandlerImpl{masterService: masterService}
}

// Create implements MasterHandler.
func (h *masterHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	kind, err := master.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req master.CreateItemRequest
	if !decodeJSON(w, r, &req, "CreateCatalogueItem") {
		return
	}
	req.Kind = kind

	result, err := h.masterService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Item created successfully", result)
}

// List implements MasterHandler.
func (h *masterHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	kind, err := master.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.masterService.List(r.Context(), kind)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Update implements MasterHandler.
func (h *masterHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	kind, err := master.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req master.UpdateItemRequest
	if !decodeJSON(w, r, &req, "UpdateCatalogueItem") {
		return
	}
	req.Kind = kind
	req.ID = chi.URLParam(r, "id")

	result, err := h.masterService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Item updated successfully", result)
}

// Delete implements MasterHandler.
func (h *masterHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	kind, err := master.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.masterService.Delete(r.Context(), kind, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Item deleted successfully", nil)
}
