package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents the processing state of a sticker batch.
type Status string

const (
	StatusPendingUpload Status = "PENDING_UPLOAD"
	StatusProcessing    Status = "PROCESSING"
	StatusReady         Status = "READY"
	StatusFailed        Status = "FAILED"
)

// Valid status transitions:
// PENDING_UPLOAD -> PROCESSING -> READY
//                            \-> FAILED
var validTransitions = map[Status][]Status{
	StatusPendingUpload: {StatusProcessing},
	StatusProcessing:    {StatusReady, StatusFailed},
	StatusReady:         {},
	StatusFailed:        {},
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPendingUpload, StatusProcessing, StatusReady, StatusFailed:
		return true
	default:
		return false
	}
}

func (s Status) CanTransitionTo(next Status) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, status := range allowed {
		if status == next {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// AssetKind identifies the type of a source asset.
type AssetKind string

const (
	AssetImage AssetKind = "image"
	AssetVideo AssetKind = "video"
)

// AssetRole determines which sticker constraints apply.
type AssetRole string

const (
	RoleSticker AssetRole = "sticker"
	RoleIcon    AssetRole = "icon"
)

// ImageFormat is the output container hint for image assets.
type ImageFormat string

const (
	FormatWebP ImageFormat = "webp"
	FormatPNG  ImageFormat = "png"
)

// Asset is one input file within a batch.
type Asset struct {
	Kind     AssetKind   `json:"kind"`
	Role     AssetRole   `json:"role"`
	Format   ImageFormat `json:"format,omitempty"`
	FileName string      `json:"file_name"`
	// SourceKey is the object storage key the client uploads the source to.
	SourceKey string `json:"source_key,omitempty"`
}

// AssetResult is the conversion outcome for one asset, in batch order.
type AssetResult struct {
	OutputKey string `json:"output_key,omitempty"`
	Succeeded bool   `json:"succeeded"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Batch represents a sticker conversion batch in the domain.
type Batch struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Status    Status
	Assets    []Asset
	Results   []AssetResult
	Processed int
	Failed    int
	CreatedAt time.Time
	UpdatedAt time.Time
}

var (
	ErrEmptyTitle        = errors.New("title cannot be empty")
	ErrInvalidUserID     = errors.New("user ID cannot be nil")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrTitleTooLong      = errors.New("title exceeds maximum length of 255 characters")
	ErrNoAssets          = errors.New("batch must contain at least one asset")
	ErrInvalidAssetKind  = errors.New("asset kind must be image or video")
	ErrInvalidAssetRole  = errors.New("asset role must be sticker or icon")
	ErrInvalidFormat     = errors.New("image format must be webp or png")
	ErrEmptyFileName     = errors.New("asset file name cannot be empty")
	ErrDuplicateIcon     = errors.New("a batch may contain at most one icon per asset kind")
)

const maxTitleLength = 255

// NewBatch creates a new Batch with PENDING_UPLOAD status.
// A batch holds any number of regular stickers plus at most one video icon
// and one image icon.
func NewBatch(userID uuid.UUID, title string, assets []Asset) (*Batch, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if len(title) > maxTitleLength {
		return nil, ErrTitleTooLong
	}
	if len(assets) == 0 {
		return nil, ErrNoAssets
	}
	if err := validateAssets(assets); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Batch{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Status:    StatusPendingUpload,
		Assets:    assets,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func validateAssets(assets []Asset) error {
	icons := map[AssetKind]int{}

	for _, a := range assets {
		switch a.Kind {
		case AssetImage, AssetVideo:
		default:
			return ErrInvalidAssetKind
		}

		switch a.Role {
		case RoleSticker:
		case RoleIcon:
			icons[a.Kind]++
			if icons[a.Kind] > 1 {
				return ErrDuplicateIcon
			}
		default:
			return ErrInvalidAssetRole
		}

		if a.Kind == AssetImage {
			switch a.Format {
			case FormatWebP, FormatPNG:
			default:
				return ErrInvalidFormat
			}
		}

		if a.FileName == "" {
			return ErrEmptyFileName
		}
	}

	return nil
}

// TransitionTo attempts to change the batch status.
// Returns error if the transition is not allowed.
func (b *Batch) TransitionTo(next Status) error {
	if !next.IsValid() {
		return ErrInvalidTransition
	}
	if !b.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	b.Status = next
	b.UpdatedAt = time.Now()
	return nil
}

// SetSourceKey records the storage key assigned to the asset at index i.
func (b *Batch) SetSourceKey(i int, key string) {
	if i < 0 || i >= len(b.Assets) {
		return
	}
	b.Assets[i].SourceKey = key
	b.UpdatedAt = time.Now()
}

// SetResults records per-asset outcomes after a conversion run.
func (b *Batch) SetResults(results []AssetResult) {
	b.Results = results
	b.Processed = 0
	b.Failed = 0
	for _, r := range results {
		if r.Succeeded {
			b.Processed++
		} else {
			b.Failed++
		}
	}
	b.UpdatedAt = time.Now()
}

// AnyConverted reports whether at least one asset was converted. A batch with
// partial failures is still considered a success overall.
func (b *Batch) AnyConverted() bool {
	return b.Processed > 0
}

// IsReady returns true if the batch finished with at least one sticker.
func (b *Batch) IsReady() bool {
	return b.Status == StatusReady
}

// IsFailed returns true if the batch processing failed.
func (b *Batch) IsFailed() bool {
	return b.Status == StatusFailed
}
