package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/socialmock/apiserver/internal/services"
	"github.com/socialmock/apiserver/types"
)

// CommentHandler provides the author-checked comment endpoints.
type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// CommentRouter registers comment routes on the given router.
func CommentRouter(r chi.Router, commentService *services.CommentService, records *services.CollectionService[types.Comment]) {
	handler := NewCommentHandler(commentService)
	generic := NewCollectionHandler(records)

	r.Get("/", generic.List)
	r.Post("/", generic.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", generic.Get)
		r.Put("/", generic.Replace)
		r.Patch("/", handler.EditComment)
		r.Delete("/", handler.DeleteComment)
	})
}

func (h *CommentHandler) EditComment(w http.ResponseWriter, r *http.Request) {
	var req EditCommentRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	comment, err := h.commentService.Edit(r.Context(), chi.URLParam(r, paramID), req.UserID, req.Body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	var req DeleteCommentRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.commentService.Delete(r.Context(), chi.URLParam(r, paramID), req.UserID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Comment deleted"})
}

type EditCommentRequest struct {
	UserID string `json:"userId"`
	Body   string `json:"body"`
}

type DeleteCommentRequest struct {
	UserID string `json:"userId"`
}
