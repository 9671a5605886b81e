package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/mkozic/askbox/internal/service"
	"github.com/mkozic/askbox/internal/transport/http/middleware"
	"github.com/mkozic/askbox/pkg/logger"
)

type FriendHandler struct {
	friendService *service.FriendService
}

func NewFriendHandler(friendService *service.FriendService) *FriendHandler {
	return &FriendHandler{friendService: friendService}
}

func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	username := r.PathValue("username")

	req, err := h.friendService.SendRequest(r.Context(), userID, username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		case errors.Is(err, service.ErrSelfRequest):
			writeError(w, http.StatusBadRequest, "SELF_REQUEST", "You cannot send a friend request to yourself")
		case errors.Is(err, service.ErrFriendshipExists):
			writeError(w, http.StatusConflict, "ALREADY_EXISTS", "A relationship already exists between you")
		default:
			logger.Errorf("send friend request: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, req)
}

func (h *FriendHandler) Respond(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	requestID, err := uuid.Parse(r.PathValue("requestId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid request ID")
		return
	}
	action := r.PathValue("action")

	if err := h.friendService.Respond(r.Context(), userID, requestID, action); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAction):
			writeError(w, http.StatusBadRequest, "INVALID_ACTION", "Action must be accept or reject")
		case errors.Is(err, service.ErrRequestNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Friend request not found")
		case errors.Is(err, service.ErrNotRequestReceiver):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the receiver can act on this request")
		default:
			logger.Errorf("act on friend request: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": action + "ed"})
}

func (h *FriendHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	friendID, err := uuid.Parse(r.PathValue("friendId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	if err := h.friendService.Remove(r.Context(), userID, friendID); err != nil {
		if errors.Is(err, service.ErrFriendshipNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Friendship not found")
		} else {
			logger.Errorf("remove friend: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *FriendHandler) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	reqs, err := h.friendService.ListMyRequests(r.Context(), userID)
	if err != nil {
		logger.Errorf("list friend requests: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, reqs)
}

func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	username := r.PathValue("username")
	search := r.URL.Query().Get("search")

	friends, err := h.friendService.ListFriends(r.Context(), userID, username, search)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		case errors.Is(err, service.ErrForbidden):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Not friends with the user")
		default:
			logger.Errorf("list friends: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, friends)
}
