package apiserver

import (
	"net/http"

	"social-go/internal/middleware"
	"social-go/internal/pagination"
	"social-go/internal/services"
)

// UserHandler wraps the user profile and directory handler methods.
type UserHandler struct {
	UserService services.UserService
}

// NewUserHandler creates a new UserHandler instance.
func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{UserService: userService}
}

// GetMyProfileHandler returns the authenticated user's own account.
func (h *UserHandler) GetMyProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	user, err := h.UserService.GetProfile(r.Context(), userID)
	if err != nil {
		writeJSONError(w, "failed to load profile", http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, http.StatusOK, user)
}

// SearchUsersHandler matches the "search" query parameter against email,
// first name and last name. An empty query lists everyone but the caller.
func (h *UserHandler) SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	query := r.URL.Query().Get("search")
	page := pagination.FromRequest(r)

	result, err := h.UserService.SearchUsers(r.Context(), query, userID, page)
	if err != nil {
		writeJSONError(w, "failed to search users", http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, http.StatusOK, result)
}
