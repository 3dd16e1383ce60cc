package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"basegraph.app/rendezvous/common/logger"
	"basegraph.app/rendezvous/internal/model"
)

const (
	maxDecodeErrorsPerConn = 5
	maxFramePayloadBytes   = 16 * 1024
	defaultWriteTimeout    = 5 * time.Second
)

// Frame is the envelope for every message in both directions.
type Frame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

type initPayload struct {
	Token string `json:"token"`
}

type respondPayload struct {
	InvitationID int64                  `json:"invitation_id,string"`
	Status       model.InvitationStatus `json:"status"`
}

type initReply struct {
	UserID int64 `json:"user_id,string"`
}

// invitationReply matches the HTTP invitation response body.
type invitationReply struct {
	ID        int64                  `json:"id,string"`
	MeetingID int64                  `json:"meeting_id,string"`
	InviteeID int64                  `json:"invitee_id,string"`
	Status    model.InvitationStatus `json:"status"`
	UpdatedAt time.Time              `json:"updated_at"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Authenticator resolves a session token to the acting user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// InviteResponder applies an invitee's direct response.
type InviteResponder interface {
	Respond(ctx context.Context, user *model.User, invitationID int64, status model.InvitationStatus) (*model.Invitation, error)
}

// ErrorClassifier maps a responder error to a client-facing code and message.
type ErrorClassifier func(err error) (code, message string)

type WSHandler struct {
	registry  *Registry
	auth      Authenticator
	responder InviteResponder
	classify  ErrorClassifier
}

func NewWSHandler(registry *Registry, auth Authenticator, responder InviteResponder, classify ErrorClassifier) *WSHandler {
	if classify == nil {
		classify = func(error) (string, string) { return "INTERNAL", "request failed" }
	}
	return &WSHandler{
		registry:  registry,
		auth:      auth,
		responder: responder,
		classify:  classify,
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(h.handleConn).ServeHTTP(w, r)
}

type wsPeer struct {
	id   string
	conn *websocket.Conn

	mu      sync.Mutex
	encoder *json.Encoder
}

func newWSPeer(conn *websocket.Conn) *wsPeer {
	return &wsPeer{
		id:      uuid.NewString(),
		conn:    conn,
		encoder: json.NewEncoder(conn),
	}
}

func (p *wsPeer) ID() string {
	return p.id
}

func (p *wsPeer) Send(ctx context.Context, event Event, payload json.RawMessage) error {
	return p.writeFrame(ctx, Frame{Type: string(event), Payload: payload})
}

func (p *wsPeer) writeFrame(ctx context.Context, frame Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultWriteTimeout)
	}
	_ = p.conn.SetWriteDeadline(deadline)
	return p.encoder.Encode(frame)
}

func (p *wsPeer) reply(ctx context.Context, requestID, frameType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "encoding reply failed", "type", frameType, "error", err)
		return
	}
	_ = p.writeFrame(ctx, Frame{Type: frameType, RequestID: requestID, Payload: raw})
}

func (p *wsPeer) replyError(ctx context.Context, requestID, code, message string) {
	p.reply(ctx, requestID, "error", errorPayload{Code: code, Message: message})
}

type wsSession struct {
	peer *wsPeer
	user *model.User
}

func (h *WSHandler) handleConn(conn *websocket.Conn) {
	ctx := context.Background()
	if req := conn.Request(); req != nil {
		ctx = req.Context()
	}

	peer := newWSPeer(conn)
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Component: "rendezvous.realtime.ws",
		ChannelID: &peer.id,
	})
	session := &wsSession{peer: peer}

	defer func() {
		h.registry.Unregister(peer)
		_ = conn.Close()
		slog.DebugContext(ctx, "websocket closed")
	}()

	conn.MaxPayloadBytes = maxFramePayloadBytes
	decodeErrors := 0

	for {
		var data []byte
		if err := websocket.Message.Receive(conn, &data); err != nil {
			if errors.Is(err, websocket.ErrFrameTooLarge) {
				peer.replyError(ctx, "", "INVALID_ARGUMENT", "payload too large")
				continue
			}
			if !errors.Is(err, io.EOF) && ctx.Err() == nil {
				slog.DebugContext(ctx, "websocket read failed", "error", err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			decodeErrors++
			peer.replyError(ctx, "", "INVALID_ARGUMENT", "invalid frame")
			if decodeErrors >= maxDecodeErrorsPerConn {
				return
			}
			continue
		}
		decodeErrors = 0

		switch frame.Type {
		case "init":
			h.handleInit(ctx, session, frame)
		case "invite:respond":
			h.handleRespond(ctx, session, frame)
		default:
			peer.replyError(ctx, frame.RequestID, "INVALID_ARGUMENT", "unsupported frame type")
		}
	}
}

func (h *WSHandler) handleInit(ctx context.Context, session *wsSession, frame Frame) {
	var payload initPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		session.peer.replyError(ctx, frame.RequestID, "INVALID_ARGUMENT", "invalid init payload")
		return
	}

	token := strings.TrimSpace(payload.Token)
	if token == "" {
		session.peer.replyError(ctx, frame.RequestID, "UNAUTHENTICATED", "token is required")
		return
	}

	user, err := h.auth.Authenticate(ctx, token)
	if err != nil || user == nil {
		slog.InfoContext(ctx, "websocket init rejected", "error", err)
		session.peer.replyError(ctx, frame.RequestID, "UNAUTHENTICATED", "invalid session")
		return
	}

	session.user = user
	h.registry.Register(user.ID, session.peer)

	slog.DebugContext(ctx, "websocket registered", "user_id", user.ID)
	session.peer.reply(ctx, frame.RequestID, "init:ok", initReply{UserID: user.ID})
}

func (h *WSHandler) handleRespond(ctx context.Context, session *wsSession, frame Frame) {
	if session.user == nil {
		session.peer.replyError(ctx, frame.RequestID, "UNAUTHENTICATED", "send init first")
		return
	}

	var payload respondPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil || payload.InvitationID == 0 {
		session.peer.replyError(ctx, frame.RequestID, "INVALID_ARGUMENT", "invalid invite:respond payload")
		return
	}
	if payload.Status != model.InvitationStatusAccepted && payload.Status != model.InvitationStatusDeclined {
		session.peer.replyError(ctx, frame.RequestID, "INVALID_ARGUMENT", "status must be accepted or declined")
		return
	}

	inv, err := h.responder.Respond(ctx, session.user, payload.InvitationID, payload.Status)
	if err != nil {
		code, message := h.classify(err)
		session.peer.replyError(ctx, frame.RequestID, code, message)
		return
	}

	session.peer.reply(ctx, frame.RequestID, "invite:respond:ok", invitationReply{
		ID:        inv.ID,
		MeetingID: inv.MeetingID,
		InviteeID: inv.InviteeID,
		Status:    inv.Status,
		UpdatedAt: inv.UpdatedAt,
	})
}
