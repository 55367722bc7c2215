package apiserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"social-go/internal/middleware"
	"social-go/internal/models"
	"social-go/internal/pagination"
	"social-go/internal/services"
	"social-go/internal/storage"

	"github.com/gorilla/mux"
)

// FriendRequestHandler wraps the friend request lifecycle handler methods.
type FriendRequestHandler struct {
	FriendRequestService services.FriendRequestService
}

// NewFriendRequestHandler creates a new FriendRequestHandler instance.
func NewFriendRequestHandler(friendRequestService services.FriendRequestService) *FriendRequestHandler {
	return &FriendRequestHandler{FriendRequestService: friendRequestService}
}

// SendFriendRequestRequest is the payload for sending a friend request.
type SendFriendRequestRequest struct {
	ReceiverID uint `json:"receiverId" validate:"required"`
}

// UpdateRequestStatusRequest is the payload for resolving a pending request.
type UpdateRequestStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// SendFriendRequestHandler creates a pending request to another user.
func (h *FriendRequestHandler) SendFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	senderID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	var req SendFriendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	request, err := h.FriendRequestService.SendRequest(r.Context(), senderID, req.ReceiverID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, request)
}

// UpdateRequestStatusHandler accepts or rejects a pending request.
func (h *FriendRequestHandler) UpdateRequestStatusHandler(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	requestID, err := strconv.ParseUint(mux.Vars(r)["requestID"], 10, 64)
	if err != nil {
		writeJSONError(w, "invalid request ID", http.StatusBadRequest)
		return
	}

	var req UpdateRequestStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := validate.Struct(req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	request, err := h.FriendRequestService.UpdateRequestStatus(
		r.Context(), actorID, uint(requestID), models.FriendRequestStatus(req.Status))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, request)
}

// ListFriendsHandler returns one page of the caller's friends.
func (h *FriendRequestHandler) ListFriendsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	result, err := h.FriendRequestService.ListFriends(r.Context(), userID, pagination.FromRequest(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, result)
}

// ListPendingRequestsHandler returns one page of requests awaiting the
// caller's accept/reject verdict.
func (h *FriendRequestHandler) ListPendingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSONError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	result, err := h.FriendRequestService.ListPendingRequests(r.Context(), userID, pagination.FromRequest(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, result)
}

// writeServiceError maps friend request service errors to HTTP statuses.
func (h *FriendRequestHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrRateLimitExceeded):
		writeJSONError(w, err.Error(), http.StatusTooManyRequests)
	case errors.Is(err, services.ErrSelfRequest),
		errors.Is(err, services.ErrInvalidStatusValue):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrReceiverNotFound),
		errors.Is(err, services.ErrRequestNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrNotRequestReceiver):
		writeJSONError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, services.ErrDuplicateActiveRequest),
		errors.Is(err, services.ErrAlreadyProcessed):
		writeJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, storage.ErrUnavailable):
		writeJSONError(w, "service temporarily unavailable, please retry", http.StatusServiceUnavailable)
	default:
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}
