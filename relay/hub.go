// Package relay brokers one-to-one file transfers between a sender and a
// receiver that rendezvous on a shared identifier.
//
// Every identifier names a room. Frames addressed to a room are forwarded to
// each member except the emitting peer. Nothing is buffered, acknowledged or
// sequenced: delivery order is whatever the transport gives per connection,
// and frames for a room without other members are dropped silently.
package relay

import (
	"log/slog"
	"sync"
)

// Inbound events.
const (
	EventSenderJoin   = "sender-join"
	EventReceiverJoin = "receiver-join"
	EventFileMeta     = "file-meta"
	EventFileStart    = "fs-start"
	EventFileRaw      = "file-raw"
)

// Outbound events.
const (
	EventInit  = "init"
	EventMeta  = "fs-meta"
	EventShare = "fs-share"
)

// Peer is one connected client. socketio.Conn satisfies it.
type Peer interface {
	ID() string
	Emit(event string, v ...interface{})
}

// Observer receives relay activity counts. metrics.Relay implements it.
type Observer interface {
	Joined(role string)
	Forwarded(event string, recipients int)
	Dropped(event string)
	RoomsChanged(n int)
}

type nopObserver struct{}

func (nopObserver) Joined(string)         {}
func (nopObserver) Forwarded(string, int) {}
func (nopObserver) Dropped(string)        {}
func (nopObserver) RoomsChanged(int)      {}

// Stats is a point-in-time count of rooms and memberships. It never carries
// uids: knowing a uid is enough to join its room.
type Stats struct {
	Rooms   int `json:"rooms"`
	Members int `json:"members"`
}

type Hub struct {
	mu sync.RWMutex
	// rooms maps uid -> peer id -> peer.
	rooms map[string]map[string]Peer
	// memberships maps peer id -> set of uids it joined.
	memberships map[string]map[string]struct{}

	logger   *slog.Logger
	observer Observer
}

func NewHub(logger *slog.Logger, observer Observer) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Hub{
		rooms:       make(map[string]map[string]Peer),
		memberships: make(map[string]map[string]struct{}),
		logger:      logger.With("component", "relay"),
		observer:    observer,
	}
}

// Join adds p to room uid. Joining a room twice is a no-op.
func (h *Hub) Join(p Peer, uid string) bool {
	if uid == "" {
		return false
	}

	h.mu.Lock()
	room, ok := h.rooms[uid]
	if !ok {
		room = make(map[string]Peer)
		h.rooms[uid] = room
	}
	if _, already := room[p.ID()]; already {
		h.mu.Unlock()
		return false
	}
	room[p.ID()] = p

	joined, ok := h.memberships[p.ID()]
	if !ok {
		joined = make(map[string]struct{})
		h.memberships[p.ID()] = joined
	}
	joined[uid] = struct{}{}
	n := len(h.rooms)
	h.mu.Unlock()

	h.observer.RoomsChanged(n)
	return true
}

// Leave removes p from every room it joined and deletes rooms left empty.
// Transports call it when the connection closes.
func (h *Hub) Leave(p Peer) {
	h.mu.Lock()
	joined := h.memberships[p.ID()]
	delete(h.memberships, p.ID())
	for uid := range joined {
		room := h.rooms[uid]
		delete(room, p.ID())
		if len(room) == 0 {
			delete(h.rooms, uid)
		}
	}
	n := len(h.rooms)
	h.mu.Unlock()

	if len(joined) > 0 {
		h.logger.Debug("peer left", "peer", p.ID(), "rooms", len(joined))
		h.observer.RoomsChanged(n)
	}
}

// emit sends event to every member of room uid except from and reports how
// many peers it reached.
func (h *Hub) emit(from Peer, uid, event string, payload interface{}) int {
	h.mu.RLock()
	room := h.rooms[uid]
	targets := make([]Peer, 0, len(room))
	for id, p := range room {
		if id != from.ID() {
			targets = append(targets, p)
		}
	}
	h.mu.RUnlock()

	for _, p := range targets {
		p.Emit(event, payload)
	}
	return len(targets)
}

func (h *Hub) forward(from Peer, inbound, uid, event string, payload interface{}) {
	if uid == "" {
		h.logger.Debug("dropping frame without uid", "event", inbound, "peer", from.ID())
		h.observer.Dropped(inbound)
		return
	}
	n := h.emit(from, uid, event, payload)
	if n == 0 {
		h.observer.Dropped(inbound)
		return
	}
	h.observer.Forwarded(event, n)
}

// SenderJoin registers the sender's interest in its own identifier.
func (h *Hub) SenderJoin(p Peer, req JoinRequest) {
	if h.Join(p, req.UID) {
		h.observer.Joined("sender")
		h.logger.Debug("sender joined", "peer", p.ID(), "uid", req.UID)
	}
}

// ReceiverJoin registers the receiver and announces it to the sender's room
// with an init event carrying the receiver's uid.
func (h *Hub) ReceiverJoin(p Peer, req ReceiverJoinRequest) {
	if h.Join(p, req.UID) {
		h.observer.Joined("receiver")
		h.logger.Debug("receiver joined", "peer", p.ID(), "uid", req.UID, "sender_uid", req.SenderUID)
	}
	h.forward(p, EventReceiverJoin, req.SenderUID, EventInit, req.UID)
}

func (h *Hub) FileMeta(p Peer, req FileMetaRequest) {
	h.forward(p, EventFileMeta, req.UID, EventMeta, req.Metadata)
}

// FileStart forwards the start marker, an fs-share with an empty object.
func (h *Hub) FileStart(p Peer, req FileStartRequest) {
	h.forward(p, EventFileStart, req.UID, EventShare, struct{}{})
}

func (h *Hub) FileRaw(p Peer, req FileRawRequest) {
	h.forward(p, EventFileRaw, req.UID, EventShare, req.Buffer)
}

// Stats counts the live rooms and the memberships across them.
func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	st := Stats{Rooms: len(h.rooms)}
	for _, room := range h.rooms {
		st.Members += len(room)
	}
	return st
}

// Members reports how many peers joined room uid.
func (h *Hub) Members(uid string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[uid])
}
