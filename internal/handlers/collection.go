package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/socialmock/apiserver/internal/services"
)

const paramID = "id"

// CollectionHandler serves json-server style CRUD for one collection. The
// collection routers mount the generic handlers they do not override.
type CollectionHandler[T any] struct {
	service *services.CollectionService[T]
}

func NewCollectionHandler[T any](service *services.CollectionService[T]) *CollectionHandler[T] {
	return &CollectionHandler[T]{service: service}
}

func (h *CollectionHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	items, total, err := h.service.List(r.Context(), r.URL.Query())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeList(w, total, items)
}

func (h *CollectionHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Get(r.Context(), chi.URLParam(r, paramID))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *CollectionHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	body, err := readRawBody(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	item, err := h.service.Create(r.Context(), body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *CollectionHandler[T]) Replace(w http.ResponseWriter, r *http.Request) {
	body, err := readRawBody(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	item, err := h.service.Replace(r.Context(), chi.URLParam(r, paramID), body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *CollectionHandler[T]) Patch(w http.ResponseWriter, r *http.Request) {
	body, err := readRawBody(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	item, err := h.service.Patch(r.Context(), chi.URLParam(r, paramID), body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *CollectionHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, paramID)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}
