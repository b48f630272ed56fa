package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/zeusync/posekit/internal/core/events/bus"
	"github.com/zeusync/posekit/internal/core/observability/log"
	"github.com/zeusync/posekit/internal/core/playback"
	"github.com/zeusync/posekit/internal/core/protocol"
)

// TriggerHandler receives resolved triggers. Unknown animation IDs arrive as
// playback.Blank.
type TriggerHandler func(target int32, handle playback.Handle)

// Observer is the receiving end of the animation channel.
type Observer struct {
	registry *playback.Registry
	codec    protocol.Codec
	log      log.Log
	bus      bus.EventBus
	handler  TriggerHandler

	conn *websocket.Conn
}

// NewObserver creates an observer resolving IDs through registry. b may be
// nil; when set every trigger is also published as bus.TypeAnimationTriggered.
func NewObserver(registry *playback.Registry, handler TriggerHandler, b bus.EventBus, logger log.Log) *Observer {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Observer{
		registry: registry,
		codec:    protocol.JSONCodec{},
		log:      logger,
		bus:      b,
		handler:  handler,
	}
}

// Dial connects to a hub at url (ws:// or wss://).
func (o *Observer) Dial(ctx context.Context, url string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("observer: dial %s: %w", url, err)
	}
	o.conn = conn
	return nil
}

// Run reads messages until ctx ends or the hub goes away. A malformed frame
// is logged and skipped; it never ends the connection.
func (o *Observer) Run(ctx context.Context) error {
	if o.conn == nil {
		return ErrServerNotRunning
	}
	stop := context.AfterFunc(ctx, func() { _ = o.conn.Close() })
	defer stop()
	defer o.conn.Close()

	for {
		_, frame, err := o.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var ce *websocket.CloseError
			if errors.As(err, &ce) && ce.Code == websocket.CloseNormalClosure {
				return nil
			}
			return err
		}
		o.handle(frame)
	}
}

func (o *Observer) handle(frame []byte) {
	msg, err := o.codec.Decode(frame)
	if err != nil {
		o.log.Warn("dropping frame", log.Error(err))
		return
	}

	switch msg.Type() {
	case protocol.TypeHello:
		var hello protocol.Hello
		if err := hello.UnmarshalBinary(msg.Payload()); err != nil {
			o.log.Warn("dropping hello", log.Error(err))
			return
		}
		if hello.Fingerprint != o.registry.Fingerprint() {
			o.log.Warn("playback registry differs from hub, animation IDs may resolve wrongly",
				log.Int32("hub_handles", hello.Handles),
				log.Int("local_handles", o.registry.Len()))
		}
	case protocol.TypeTrigger:
		var t protocol.Trigger
		if err := t.UnmarshalBinary(msg.Payload()); err != nil {
			o.log.Warn("dropping trigger", log.Error(err))
			return
		}
		handle, known := o.registry.HandleOrBlank(t.AnimationID)
		if !known {
			o.log.Warn("unknown animation id, playing blank",
				log.Int32("animation_id", t.AnimationID),
				log.Int32("target_id", t.TargetID))
		}
		if o.handler != nil {
			o.handler(t.TargetID, handle)
		}
		if o.bus != nil {
			ev := bus.Trigger{TargetID: t.TargetID, AnimationID: t.AnimationID, Known: known}
			if err := o.bus.Publish(bus.NewEvent(bus.TypeAnimationTriggered, "observer", ev)); err != nil {
				o.log.Warn("trigger subscriber failed", log.Error(err))
			}
		}
	default:
		o.log.Warn("dropping frame", log.Error(fmt.Errorf("%w: %q", protocol.ErrUnknownMessageType, msg.Type())))
	}
}
