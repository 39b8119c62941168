package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const writeTimeout = 60 * time.Second

// UserFunc resolves the authenticated owner of a request, or "".
type UserFunc func(ctx context.Context) string

// Handler serves the event stream at GET /api/v1/events. An optional
// ?recipe=<id> narrows the stream to one recipe.
type Handler struct {
	manager *Manager
	user    UserFunc
	logger  *slog.Logger
}

// NewHandler creates a Handler. Requests without a user are rejected.
func NewHandler(manager *Manager, user UserFunc, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{manager: manager, user: user, logger: logger}
}

// connectedData is the payload of the first message on every stream.
type connectedData struct {
	ClientID string `json:"clientId"`
	RecipeID string `json:"recipeId,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sub := Subscription{
		UserID:   h.user(r.Context()),
		RecipeID: r.URL.Query().Get("recipe"),
	}
	if sub.UserID == "" {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		h.logger.Error("event stream cannot flush", "error", err)
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	client, err := h.manager.Connect(sub)
	if err != nil {
		h.logger.Error("failed to register event client", "error", err)
		return
	}
	defer h.manager.Disconnect(client.ID)
	log := h.logger.With("client_id", client.ID)

	stream := &eventWriter{w: w, rc: rc}
	if err := stream.write("connected", connectedData{ClientID: client.ID, RecipeID: sub.RecipeID}); err != nil {
		log.Warn("event stream closed before hello", "error", err)
		return
	}

	for {
		select {
		case e, ok := <-client.Events:
			if !ok {
				return
			}
			if err := stream.write(string(e.Type), e); err != nil {
				log.Debug("event stream write failed", "error", err)
				return
			}
		case <-client.Done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// eventWriter frames messages as text/event-stream and flushes each one.
type eventWriter struct {
	w  io.Writer
	rc *http.ResponseController
}

func (ew *eventWriter) write(name string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", name, err)
	}
	// Deadlines are best effort; not every ResponseWriter supports them.
	_ = ew.rc.SetWriteDeadline(time.Now().Add(writeTimeout))

	if _, err := fmt.Fprintf(ew.w, "event: %s\ndata: %s\n\n", name, payload); err != nil {
		return err
	}
	return ew.rc.Flush()
}
