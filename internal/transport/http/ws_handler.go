package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"escape-room-service/internal/app"
	"escape-room-service/internal/domain"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.RoundService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.RoundService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	ItemID string `json:"itemId"`
	Value  string `json:"value"`
}

type reorderPayload struct {
	Order []string `json:"order"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives one round instance
// per connection. Passing instanceId resumes an existing instance instead of
// starting a new one.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	roundID := q.Get("roundId")
	playerID := q.Get("playerId")
	instanceID := q.Get("instanceId")
	if playerID == "" || (roundID == "" && instanceID == "") {
		http.Error(w, "missing playerId, or roundId/instanceId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	var view domain.RoundView
	if instanceID != "" {
		view, err = h.service.View(ctx, instanceID, playerID)
	} else {
		view, err = h.service.Start(ctx, roundID, playerID)
	}
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: toErrorPayload(err)})
		return
	}
	instanceID = view.InstanceID

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "state", Payload: view}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		for _, msg := range h.handle(r, instanceID, playerID, inbound) {
			send <- msg
		}
	}

	close(send)
	<-writerDone
}

func (h *WSHandler) handle(r *http.Request, instanceID, playerID string, inbound inboundMessage) []outboundMessage[any] {
	ctx := r.Context()
	var (
		view domain.RoundView
		err  error
	)
	switch inbound.Type {
	case "select", "deselect":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.ItemID == "" {
			return errorMessage(errorPayload{Code: "bad_payload", Message: "invalid " + inbound.Type + " payload"})
		}
		if inbound.Type == "select" {
			view, err = h.service.Select(ctx, instanceID, playerID, payload.ItemID, payload.Value)
		} else {
			view, err = h.service.Deselect(ctx, instanceID, playerID, payload.ItemID)
		}
	case "reorder":
		var payload reorderPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errorMessage(errorPayload{Code: "bad_payload", Message: "invalid reorder payload"})
		}
		view, err = h.service.Reorder(ctx, instanceID, playerID, payload.Order)
	case "validate":
		view, err = h.service.Validate(ctx, instanceID, playerID)
		if err == nil {
			return []outboundMessage[any]{{Type: "result", Payload: view}}
		}
	case "retry":
		view, err = h.service.Retry(ctx, instanceID, playerID)
	case "continue":
		var progress domain.SectionProgress
		view, progress, err = h.service.Continue(ctx, instanceID, playerID)
		if err == nil {
			return []outboundMessage[any]{
				{Type: "state", Payload: view},
				{Type: "progress", Payload: progress},
			}
		}
	default:
		return errorMessage(errorPayload{Code: "unsupported", Message: "unsupported message type"})
	}
	if err != nil {
		return errorMessage(toErrorPayload(err))
	}
	return []outboundMessage[any]{{Type: "state", Payload: view}}
}

func errorMessage(p errorPayload) []outboundMessage[any] {
	return []outboundMessage[any]{{Type: "error", Payload: p}}
}

func toErrorPayload(err error) errorPayload {
	code := "internal"
	switch {
	case errors.Is(err, domain.ErrTransitionNotAllowed):
		code = "not_allowed"
	case errors.Is(err, domain.ErrInstanceNotFound), errors.Is(err, domain.ErrRoundNotFound):
		code = "not_found"
	case errors.Is(err, domain.ErrPlayerMismatch):
		code = "forbidden"
	case errors.Is(err, domain.ErrInvalidResponse):
		code = "invalid_response"
	case errors.Is(err, domain.ErrInvalidConfig):
		code = "invalid_round"
	}
	return errorPayload{Code: code, Message: err.Error()}
}
