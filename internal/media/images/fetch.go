package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"log/slog"
	"net/http"
	"time"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// maxImageSize limits download size to prevent memory exhaustion.
	maxImageSize = 20 * 1024 * 1024

	// fetchTimeout is the maximum time for one image download.
	fetchTimeout = 30 * time.Second
)

// ErrImageTooLarge is returned when a download exceeds maxImageSize.
var ErrImageTooLarge = errors.New("image exceeds size limit")

// Probe describes a fetched image.
type Probe struct {
	Width    int
	Height   int
	Format   string // "jpeg", "png", "gif" or "webp"
	BlurHash string
	Size     int64
}

// Fetcher downloads recipe images, stores a local copy and probes them.
type Fetcher struct {
	httpClient *http.Client
	storage    *Storage
	logger     *slog.Logger
}

// NewFetcher creates a Fetcher. A nil client uses one with fetchTimeout.
func NewFetcher(storage *Storage, client *http.Client, logger *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fetcher{httpClient: client, storage: storage, logger: logger}
}

// Fetch downloads url, stores it as imageID and returns its dimensions and
// BlurHash. A BlurHash failure is logged and leaves the field empty.
func (f *Fetcher) Fetch(ctx context.Context, imageID, url string) (*Probe, error) {
	data, err := f.download(ctx, url)
	if err != nil {
		return nil, err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	probe := &Probe{Width: b.Dx(), Height: b.Dy(), Format: format, Size: int64(len(data))}

	if hash, err := ComputeBlurHash(img); err != nil {
		f.logger.Warn("failed to compute blurhash", "image_id", imageID, "error", err)
	} else {
		probe.BlurHash = hash
	}

	if f.storage != nil {
		if err := f.storage.Save(imageID, data); err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
	}

	f.logger.Info("fetched recipe image",
		"image_id", imageID,
		"format", format,
		"size", probe.Size,
		"width", probe.Width,
		"height", probe.Height,
	)
	return probe, nil
}

// Load returns image imageID decoded, from local storage when present and
// otherwise by downloading url.
func (f *Fetcher) Load(ctx context.Context, imageID, url string) (image.Image, error) {
	if f.storage != nil {
		data, err := f.storage.Get(imageID)
		switch {
		case err == nil:
			img, _, decodeErr := image.Decode(bytes.NewReader(data))
			if decodeErr == nil {
				return img, nil
			}
			f.logger.Warn("stored image unreadable, refetching", "image_id", imageID, "error", decodeErr)
		case !errors.Is(err, ErrNotStored):
			f.logger.Warn("stored image unavailable, refetching", "image_id", imageID, "error", err)
		}
	}

	data, err := f.download(ctx, url)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if f.storage != nil {
		if err := f.storage.Save(imageID, data); err != nil {
			f.logger.Warn("failed to store image", "image_id", imageID, "error", err)
		}
	}
	return img, nil
}

func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, errors.New("empty image URL")
	}

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	if len(data) > maxImageSize {
		return nil, ErrImageTooLarge
	}
	return data, nil
}

// DecodeConfig returns the dimensions and format of encoded image data
// without decoding the pixels.
func DecodeConfig(data []byte) (width, height int, format string, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, format, nil
}
