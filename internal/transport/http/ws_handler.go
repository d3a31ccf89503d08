package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"fraction-tug-service/internal/app"
	"fraction-tug-service/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

type WSHandler struct {
	service  *app.MatchService
	upgrader websocket.Upgrader
	verbose  bool
}

func NewWSHandler(service *app.MatchService, verbose bool) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		verbose: verbose,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Team   domain.Team `json:"team"`
	Option int         `json:"option"`
}

type teamPayload struct {
	Team domain.Team `json:"team"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the match use cases.
// Every re-render of the match is pushed as a "state" message.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	matchID := ps.ByName("matchid")
	if matchID == "" {
		http.Error(w, "missing match id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	if _, err := h.service.Open(ctx, matchID); err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel, err := h.service.Subscribe(ctx, matchID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: projectView(update)}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.dispatch(ctx, matchID, inbound); err != nil {
			if h.verbose {
				log.Printf("match %s: %s rejected: %v", matchID, inbound.Type, err)
			}
			select {
			case send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}:
			case <-writerDone:
			}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

var errUnsupportedMessage = errors.New("unsupported message type")

// dispatch applies one inbound action; the resulting state reaches the
// client through the subscription.
func (h *WSHandler) dispatch(ctx context.Context, matchID string, inbound inboundMessage) error {
	switch inbound.Type {
	case "start":
		_, err := h.service.Start(ctx, matchID)
		return err
	case "quit":
		_, err := h.service.Quit(ctx, matchID)
		return err
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errors.New("invalid answer payload")
		}
		_, err := h.service.SubmitAnswer(ctx, matchID, payload.Team, payload.Option)
		return err
	case "flip":
		var payload teamPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errors.New("invalid flip payload")
		}
		_, err := h.service.ToggleFlip(ctx, matchID, payload.Team)
		return err
	default:
		return errUnsupportedMessage
	}
}
