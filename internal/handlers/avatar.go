package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/moling/userservice/internal/authz"
	"github.com/moling/userservice/internal/services"
	"github.com/moling/userservice/internal/storage"
	"github.com/moling/userservice/internal/store"
)

const (
	avatarFormField    = "file"
	maxMultipartMemory = 8 << 20
)

// AvatarHandler provides avatar upload, retrieval, and deletion endpoints.
type AvatarHandler struct {
	avatarService *services.AvatarService
	table         authz.Table
}

// NewAvatarHandler constructs an AvatarHandler with the provided dependencies.
func NewAvatarHandler(avatarService *services.AvatarService, table authz.Table) *AvatarHandler {
	return &AvatarHandler{
		avatarService: avatarService,
		table:         table,
	}
}

// AvatarRouter registers avatar routes on the given router. All routes
// require a valid token; upload and delete additionally require ownership of
// the target user or the user:manage:any permission.
func AvatarRouter(r chi.Router, avatarService *services.AvatarService, table authz.Table, authMiddleware func(http.Handler) http.Handler) {
	handler := NewAvatarHandler(avatarService, table)

	r.Use(authMiddleware)
	r.With(RequirePermission(table, authz.PermAvatarUpload)).Post("/{userID}", handler.Upload)
	r.With(RequirePermission(table, authz.PermAvatarUpload)).Delete("/{userID}", handler.Delete)
	r.With(RequirePermission(table, authz.PermAvatarRead)).Get("/{userID}/{fileID}", handler.Get)
}

// Upload stores a new avatar for the target user, superseding any previous
// one.
func (h *AvatarHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizeOwnerOrAdmin(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile(avatarFormField)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	ref, err := h.avatarService.Upload(r.Context(), userID, data, header.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPayloadTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		case errors.Is(err, services.ErrUnsupportedMediaType):
			writeError(w, http.StatusUnsupportedMediaType, "unsupported media type")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to store avatar")
		}
		return
	}

	writeJSON(w, http.StatusCreated, ref)
}

// Get streams the avatar object addressed by user and file ID.
func (h *AvatarHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	fileID := chi.URLParam(r, "fileID")

	key := "avatars/" + strconv.Itoa(userID) + "/" + fileID
	data, contentType, err := h.avatarService.Retrieve(r.Context(), key)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidKey):
			writeError(w, http.StatusBadRequest, "invalid avatar id")
		case errors.Is(err, storage.ErrObjectNotFound):
			writeError(w, http.StatusNotFound, "avatar not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to load avatar")
		}
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Delete removes the target user's current avatar.
func (h *AvatarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authorizeOwnerOrAdmin(w, r)
	if !ok {
		return
	}

	if err := h.avatarService.Remove(r.Context(), userID); err != nil {
		switch {
		case errors.Is(err, storage.ErrObjectNotFound):
			writeError(w, http.StatusNotFound, "avatar not found")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "user not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to delete avatar")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// authorizeOwnerOrAdmin parses the target user ID and enforces
// ownership-or-admin on mutating avatar routes.
func (h *AvatarHandler) authorizeOwnerOrAdmin(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, err := parseUserID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}

	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return 0, false
	}
	if identity.UserID != userID && !h.table.Authorize(identity.Role, authz.PermUserManageAny) {
		writeError(w, http.StatusForbidden, "forbidden")
		return 0, false
	}
	return userID, true
}

func parseUserID(r *http.Request) (int, error) {
	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil || userID < 1 {
		return 0, errors.New("invalid user id")
	}
	return userID, nil
}
