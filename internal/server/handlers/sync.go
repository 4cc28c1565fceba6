package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/wastetrack/internal/models"
	"github.com/iudanet/wastetrack/internal/server/storage"
	"github.com/iudanet/wastetrack/pkg/api"
)

// maxMessageBytes ограничивает размер одного сообщения
const maxMessageBytes = 1 << 20

// SyncHandler отдает снапшоты и принимает исходящие сообщения клиентов.
// Все методы требуют AuthMiddleware.
type SyncHandler struct {
	logger     *slog.Logger
	users      storage.UserStorage
	catalog    storage.CatalogStorage
	operations storage.OperationStorage
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(
	logger *slog.Logger,
	users storage.UserStorage,
	catalog storage.CatalogStorage,
	operations storage.OperationStorage,
) *SyncHandler {
	return &SyncHandler{
		logger:     logger,
		users:      users,
		catalog:    catalog,
		operations: operations,
	}
}

// userID извлекает пользователя из контекста или отвечает 401
func (h *SyncHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.logger.ErrorContext(r.Context(), "user ID not found in context")
		SendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// internalError логирует ошибку и отвечает 500
func (h *SyncHandler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg, slog.Any("error", err))
	SendError(h.logger, w, "internal server error", http.StatusInternalServerError)
}

// GetPermissions обрабатывает GET /api/v1/permissions
func (h *SyncHandler) GetPermissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	user, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			SendError(h.logger, w, "user not found", http.StatusUnauthorized)
			return
		}
		h.internalError(w, r, "failed to get user", err)
		return
	}

	grants, err := h.catalog.GetGrants(ctx, userID)
	if err != nil {
		h.internalError(w, r, "failed to get grants", err)
		return
	}

	resp := models.Permissions{
		Account: models.Account{
			UserID:   user.ID,
			UserName: user.Username,
			Email:    user.Email,
		},
		Grants: grants,
	}
	sendJSON(h.logger, w, resp, http.StatusOK)
}

// GetInventory обрабатывает GET /api/v1/inventory
func (h *SyncHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.userID(w, r); !ok {
		return
	}

	inv, err := h.catalog.GetInventory(r.Context())
	if err != nil {
		h.internalError(w, r, "failed to get inventory", err)
		return
	}
	sendJSON(h.logger, w, inv, http.StatusOK)
}

// GetMasterData обрабатывает GET /api/v1/masterdata
func (h *SyncHandler) GetMasterData(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.userID(w, r); !ok {
		return
	}

	md, err := h.catalog.GetMasterData(r.Context())
	if err != nil {
		h.internalError(w, r, "failed to get master data", err)
		return
	}
	sendJSON(h.logger, w, md, http.StatusOK)
}

// GetOperation обрабатывает GET /api/v1/operation
func (h *SyncHandler) GetOperation(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	op, err := h.operations.GetOperation(r.Context(), userID)
	if err != nil {
		h.internalError(w, r, "failed to get operation", err)
		return
	}
	sendJSON(h.logger, w, op, http.StatusOK)
}

// PostMessage обрабатывает POST /api/v1/messages.
// Повтор уже примененного id подтверждается с Duplicate=true.
func (h *SyncHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var msg models.PendingMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBytes)).Decode(&msg); err != nil {
		h.logger.WarnContext(ctx, "failed to decode message", slog.Any("error", err))
		SendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	duplicate, err := h.operations.ApplyMessage(ctx, userID, &msg)
	if err != nil {
		status := messageStatus(err)
		if status == http.StatusInternalServerError {
			h.internalError(w, r, "failed to apply message", err)
			return
		}
		h.logger.WarnContext(ctx, "message rejected",
			slog.String("message_id", msg.ID),
			slog.String("user_id", userID),
			slog.Any("error", err))
		SendError(h.logger, w, err.Error(), status)
		return
	}

	h.logger.InfoContext(ctx, "message applied",
		slog.String("message_id", msg.ID),
		slog.String("entity", string(msg.Entity)),
		slog.String("crud", string(msg.CRUD)),
		slog.Bool("duplicate", duplicate))

	sendJSON(h.logger, w, api.MessageResponse{ID: msg.ID, Duplicate: duplicate}, http.StatusOK)
}

// messageStatus сопоставляет ошибки хранилища HTTP статусам
func messageStatus(err error) int {
	switch {
	case errors.Is(err, storage.ErrInvalidMessage):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrEntityExists):
		return http.StatusConflict
	case errors.Is(err, storage.ErrInvalidReference):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
