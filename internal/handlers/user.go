package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/socialmock/apiserver/internal/query"
	"github.com/socialmock/apiserver/internal/services"
	"github.com/socialmock/apiserver/types"
)

// UserHandler provides HTTP handlers for users.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, userService *services.UserService, records *services.CollectionService[types.User]) {
	handler := NewUserHandler(userService)
	generic := NewCollectionHandler(records)

	r.Get("/", handler.ListUsers)
	r.Post("/", generic.Create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", generic.Get)
		r.Put("/", generic.Replace)
		r.Patch("/", generic.Patch)
		r.Delete("/", generic.Delete)
		r.Patch("/bookmark", handler.ToggleBookmark)
		r.Patch("/friends", handler.SetFriends)
		r.Get("/details", handler.Details)
	})
}

// ListUsers filters and pages users, optionally leaving one out.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	params := query.Parse(values, services.UsersDefaults)

	users, total, err := h.userService.List(r.Context(), values.Get("exclude"), values, params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeList(w, total, users)
}

func (h *UserHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	var req BookmarkRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.userService.ToggleBookmark(r.Context(), chi.URLParam(r, paramID), req.PostID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) SetFriends(w http.ResponseWriter, r *http.Request) {
	var req FriendsRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	// Anything but a JSON array of strings reaches the service as nil.
	var friendIDs []string
	if len(req.FriendIDs) > 0 {
		if err := json.Unmarshal(req.FriendIDs, &friendIDs); err != nil {
			friendIDs = nil
		}
	}

	user, err := h.userService.SetFriends(r.Context(), chi.URLParam(r, paramID), friendIDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Details(w http.ResponseWriter, r *http.Request) {
	details, err := h.userService.Details(r.Context(), chi.URLParam(r, paramID))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

type BookmarkRequest struct {
	PostID string `json:"postId"`
}

type FriendsRequest struct {
	FriendIDs json.RawMessage `json:"friendIds"`
}
