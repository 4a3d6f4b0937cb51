package socket

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ssovee/Open-Data-API/relay"
)

var ErrUnknownEvent = errors.New("unknown event")

// Frame is the envelope used on /ws/share in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// dispatch decodes data for event and hands it to the hub as from.
func dispatch(hub *relay.Hub, from relay.Peer, f Frame) error {
	decode := func(v any) error {
		if len(f.Data) == 0 {
			return nil
		}
		if err := json.Unmarshal(f.Data, v); err != nil {
			return fmt.Errorf("decode %s: %w", f.Event, err)
		}
		return nil
	}

	switch f.Event {
	case relay.EventSenderJoin:
		var req relay.JoinRequest
		if err := decode(&req); err != nil {
			return err
		}
		hub.SenderJoin(from, req)
	case relay.EventReceiverJoin:
		var req relay.ReceiverJoinRequest
		if err := decode(&req); err != nil {
			return err
		}
		hub.ReceiverJoin(from, req)
	case relay.EventFileMeta:
		var req relay.FileMetaRequest
		if err := decode(&req); err != nil {
			return err
		}
		hub.FileMeta(from, req)
	case relay.EventFileStart:
		var req relay.FileStartRequest
		if err := decode(&req); err != nil {
			return err
		}
		hub.FileStart(from, req)
	case relay.EventFileRaw:
		var req relay.FileRawRequest
		if err := decode(&req); err != nil {
			return err
		}
		hub.FileRaw(from, req)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, f.Event)
	}
	return nil
}
