package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/PupsWorldPeace/TeleSticker/internal/domain/model"
	"github.com/PupsWorldPeace/TeleSticker/internal/domain/repository"
	"github.com/PupsWorldPeace/TeleSticker/internal/usecase"
)

// Request/Response types

type AssetRequest struct {
	Kind     string `json:"kind"`
	Role     string `json:"role"`
	Format   string `json:"format,omitempty"`
	FileName string `json:"file_name"`
}

type CreateBatchRequest struct {
	UserID string         `json:"user_id"`
	Title  string         `json:"title"`
	Assets []AssetRequest `json:"assets"`
}

type CreateBatchResponse struct {
	ID         string   `json:"id"`
	UserID     string   `json:"user_id"`
	Title      string   `json:"title"`
	Status     string   `json:"status"`
	UploadURLs []string `json:"upload_urls"`
	CreatedAt  string   `json:"created_at"`
}

type AssetResultResponse struct {
	Succeeded bool   `json:"succeeded"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
	Message   string `json:"message,omitempty"`
}

type BatchResponse struct {
	ID        string                `json:"id"`
	UserID    string                `json:"user_id"`
	Title     string                `json:"title"`
	Status    string                `json:"status"`
	Processed int                   `json:"processed"`
	Failed    int                   `json:"failed"`
	Results   []AssetResultResponse `json:"results,omitempty"`
	CreatedAt string                `json:"created_at"`
	UpdatedAt string                `json:"updated_at"`
}

type ResultURLsResponse struct {
	Results []usecase.ResultURL `json:"results"`
}

// BatchHandler handles sticker batch HTTP requests.
type BatchHandler struct {
	svc usecase.BatchService
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(svc usecase.BatchService) *BatchHandler {
	return &BatchHandler{svc: svc}
}

// Create handles POST /v1/batches
func (h *BatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_user_id", "User ID must be a valid UUID")
		return
	}

	if req.Title == "" {
		Error(w, http.StatusBadRequest, "invalid_title", "Title is required")
		return
	}

	if len(req.Assets) == 0 {
		Error(w, http.StatusBadRequest, "invalid_assets", "At least one asset is required")
		return
	}

	assets := make([]model.Asset, len(req.Assets))
	for i, a := range req.Assets {
		assets[i] = model.Asset{
			Kind:     model.AssetKind(a.Kind),
			Role:     model.AssetRole(a.Role),
			Format:   model.ImageFormat(a.Format),
			FileName: a.FileName,
		}
	}

	output, err := h.svc.CreateBatch(r.Context(), usecase.CreateBatchInput{
		UserID: userID,
		Title:  req.Title,
		Assets: assets,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusCreated, CreateBatchResponse{
		ID:         output.Batch.ID.String(),
		UserID:     output.Batch.UserID.String(),
		Title:      output.Batch.Title,
		Status:     output.Batch.Status.String(),
		UploadURLs: output.UploadURLs,
		CreatedAt:  output.Batch.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// TriggerProcess handles POST /v1/batches/{id}/process
func (h *BatchHandler) TriggerProcess(w http.ResponseWriter, r *http.Request) {
	batchID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_batch_id", "Batch ID must be a valid UUID")
		return
	}

	if err := h.svc.TriggerProcess(r.Context(), batchID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// Get handles GET /v1/batches/{id}
func (h *BatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	batchID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_batch_id", "Batch ID must be a valid UUID")
		return
	}

	batch, err := h.svc.GetBatch(r.Context(), batchID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, toBatchResponse(batch))
}

// Results handles GET /v1/batches/{id}/results
func (h *BatchHandler) Results(w http.ResponseWriter, r *http.Request) {
	batchID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_batch_id", "Batch ID must be a valid UUID")
		return
	}

	urls, err := h.svc.GetResultURLs(r.Context(), batchID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, ResultURLsResponse{Results: urls})
}

func (h *BatchHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrBatchNotFound):
		Error(w, http.StatusNotFound, "batch_not_found", "Batch not found")
	case errors.Is(err, model.ErrInvalidUserID):
		Error(w, http.StatusBadRequest, "invalid_user_id", "User ID cannot be empty")
	case errors.Is(err, model.ErrEmptyTitle):
		Error(w, http.StatusBadRequest, "invalid_title", "Title cannot be empty")
	case errors.Is(err, model.ErrTitleTooLong):
		Error(w, http.StatusBadRequest, "invalid_title", "Title exceeds maximum length")
	case errors.Is(err, model.ErrNoAssets):
		Error(w, http.StatusBadRequest, "invalid_assets", "At least one asset is required")
	case errors.Is(err, model.ErrInvalidAssetKind):
		Error(w, http.StatusBadRequest, "invalid_asset_kind", "Asset kind must be image or video")
	case errors.Is(err, model.ErrInvalidAssetRole):
		Error(w, http.StatusBadRequest, "invalid_asset_role", "Asset role must be sticker or icon")
	case errors.Is(err, model.ErrInvalidFormat):
		Error(w, http.StatusBadRequest, "invalid_format", "Image format must be webp or png")
	case errors.Is(err, model.ErrEmptyFileName):
		Error(w, http.StatusBadRequest, "invalid_file_name", "Asset file name is required")
	case errors.Is(err, model.ErrDuplicateIcon):
		Error(w, http.StatusBadRequest, "duplicate_icon", "A batch may contain at most one icon per asset kind")
	case errors.Is(err, usecase.ErrBatchAlreadyCompleted):
		Error(w, http.StatusConflict, "batch_already_completed", "Batch processing has already completed")
	default:
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

func toBatchResponse(b *model.Batch) BatchResponse {
	resp := BatchResponse{
		ID:        b.ID.String(),
		UserID:    b.UserID.String(),
		Title:     b.Title,
		Status:    b.Status.String(),
		Processed: b.Processed,
		Failed:    b.Failed,
		CreatedAt: b.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: b.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	for _, r := range b.Results {
		resp.Results = append(resp.Results, AssetResultResponse{
			Succeeded: r.Succeeded,
			SizeBytes: r.SizeBytes,
			Message:   r.Message,
		})
	}

	return resp
}
