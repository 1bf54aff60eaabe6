package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/socialmock/apiserver/internal/query"
	"github.com/socialmock/apiserver/internal/services"
	"github.com/socialmock/apiserver/types"
)

// PostHandler provides HTTP handlers for posts and their comments.
type PostHandler struct {
	postService    *services.PostService
	commentService *services.CommentService
}

func NewPostHandler(postService *services.PostService, commentService *services.CommentService) *PostHandler {
	return &PostHandler{
		postService:    postService,
		commentService: commentService,
	}
}

// PostRouter registers post routes on the given router.
func PostRouter(
	r chi.Router,
	postService *services.PostService,
	commentService *services.CommentService,
	records *services.CollectionService[types.Post],
) {
	handler := NewPostHandler(postService, commentService)
	generic := NewCollectionHandler(records)

	r.Get("/", generic.List)
	r.Post("/", handler.CreatePost)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", generic.Get)
		r.Put("/", generic.Replace)
		r.Patch("/", generic.Patch)
		r.Delete("/", generic.Delete)
		r.Get("/comments", handler.ListComments)
		r.Post("/comments", handler.CreateComment)
	})
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	post, err := h.postService.Create(r.Context(), services.PostInput{
		UserID: req.UserID,
		Title:  req.Title,
		Body:   req.Body,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// ListComments pages a post's comments with their authors embedded.
func (h *PostHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	params := query.Parse(r.URL.Query(), services.PostCommentsDefaults)

	comments, total, err := h.commentService.ListForPost(r.Context(), chi.URLParam(r, paramID), params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeList(w, total, comments)
}

func (h *PostHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req CreateCommentRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	comment, err := h.commentService.Create(r.Context(), chi.URLParam(r, paramID), services.CommentInput{
		UserID: req.UserID,
		Body:   req.Body,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

type CreatePostRequest struct {
	UserID string `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

type CreateCommentRequest struct {
	UserID string `json:"userId"`
	Body   string `json:"body"`
}
