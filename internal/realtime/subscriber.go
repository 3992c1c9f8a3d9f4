// Package realtime listens on the backend's quote channel and forwards
// conversion announcements to the caller.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"order-desk/internal/core"
)

// DefaultReconnectDelay is used when the configured delay is not positive.
const DefaultReconnectDelay = 5 * time.Second

// EventQuoteConverted is the frame name the backend emits after a conversion.
const EventQuoteConverted = "quoteConverted"

// Frame is one message on the quote channel.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// QuoteConverted is the payload of a quoteConverted frame.
type QuoteConverted struct {
	QuoteID int `json:"quoteId"`
	OrderID int `json:"orderId,omitempty"`
}

// Handler receives each decoded conversion. A returned error is logged and
// the connection stays open.
type Handler func(ctx context.Context, ev QuoteConverted) error

// Subscriber keeps a WebSocket connection to the quote channel open.
type Subscriber struct {
	url            string
	reconnectDelay time.Duration
	dialer         *websocket.Dialer
	logger         *zap.Logger
}

// NewSubscriber creates a subscriber for wsURL.
func NewSubscriber(wsURL string, reconnectDelay time.Duration, logger *zap.Logger) *Subscriber {
	if reconnectDelay <= 0 {
		reconnectDelay = DefaultReconnectDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Subscriber{
		url:            wsURL,
		reconnectDelay: reconnectDelay,
		dialer:         websocket.DefaultDialer,
		logger:         logger,
	}
}

// Listen connects with sess and delivers conversions to handle until ctx ends.
// Dropped connections are re-dialed after the reconnect delay. It returns
// ctx.Err() once the context is done.
func (s *Subscriber) Listen(ctx context.Context, sess core.Session, handle Handler) error {
	for {
		err := s.listenOnce(ctx, sess, handle)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Info("quote channel disconnected",
			zap.String("url", s.url),
			zap.Duration("retry_in", s.reconnectDelay),
			zap.Error(err),
		)

		t := time.NewTimer(s.reconnectDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (s *Subscriber) listenOnce(ctx context.Context, sess core.Session, handle Handler) error {
	conn, resp, err := s.dialer.DialContext(ctx, s.url, sessionHeader(sess))
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			s.logger.Warn("quote channel rejected session as unauthorized; no redirect performed",
				zap.Bool("bearer", sess.Authenticated()))
			return fmt.Errorf("dial %s: %w", s.url, core.ErrUnauthorized)
		}
		return fmt.Errorf("dial %s: %w", s.url, err)
	}
	defer conn.Close()
	s.logger.Info("quote channel connected", zap.String("url", s.url))

	// Unblock ReadMessage when the caller stops listening.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-stop:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return errors.New("closed by server")
			}
			return fmt.Errorf("read: %w", err)
		}

		ev, ok, err := decodeFrame(data)
		if err != nil {
			s.logger.Warn("malformed quote channel frame", zap.ByteString("frame", data), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		if err := handle(ctx, ev); err != nil {
			s.logger.Warn("quote conversion handler failed", zap.Int("quote_id", ev.QuoteID), zap.Error(err))
		}
	}
}

// decodeFrame parses a frame. ok is false for events other than quoteConverted.
func decodeFrame(data []byte) (QuoteConverted, bool, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return QuoteConverted{}, false, err
	}
	if f.Event != EventQuoteConverted {
		return QuoteConverted{}, false, nil
	}
	var ev QuoteConverted
	if err := json.Unmarshal(f.Data, &ev); err != nil {
		return QuoteConverted{}, false, err
	}
	if ev.QuoteID <= 0 {
		return QuoteConverted{}, false, fmt.Errorf("quoteConverted without quoteId")
	}
	return ev, true, nil
}

func sessionHeader(sess core.Session) http.Header {
	h := http.Header{}
	if sess.Authenticated() {
		h.Set("Authorization", "Bearer "+sess.Token)
		return h
	}
	h.Set("X-User-ID", sess.FallbackUserID)
	h.Set("X-Region-ID", sess.FallbackRegionID)
	return h
}
