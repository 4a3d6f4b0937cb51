package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ssovee/Open-Data-API/relay"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(Frame{Event: event, Data: raw}); err != nil {
		t.Fatalf("write %s: %v", event, err)
	}
}

func recv(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read: %v", err)
	}
	return f
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServeWS_Transfer(t *testing.T) {
	hub := relay.NewHub(discardLogger(), nil)
	srv := httptest.NewServer(ServeWS(hub, discardLogger(), 4))
	defer srv.Close()

	sender := dial(t, srv)
	receiver := dial(t, srv)

	send(t, sender, relay.EventSenderJoin, relay.JoinRequest{UID: "snd-1"})
	waitFor(t, func() bool { return hub.Members("snd-1") == 1 })

	send(t, receiver, relay.EventReceiverJoin, relay.ReceiverJoinRequest{UID: "rcv-1", SenderUID: "snd-1"})
	f := recv(t, sender)
	if f.Event != relay.EventInit || string(f.Data) != `"rcv-1"` {
		t.Fatalf("sender got %s %s, want init \"rcv-1\"", f.Event, f.Data)
	}

	send(t, sender, relay.EventFileMeta, map[string]any{
		"uid":      "rcv-1",
		"metadata": map[string]any{"filename": "a.txt", "total_buffer_size": 4, "buffer_size": 2},
	})
	f = recv(t, receiver)
	if f.Event != relay.EventMeta || !strings.Contains(string(f.Data), `"filename":"a.txt"`) {
		t.Fatalf("receiver got %s %s", f.Event, f.Data)
	}

	send(t, receiver, relay.EventFileStart, relay.FileStartRequest{UID: "snd-1"})
	f = recv(t, sender)
	if f.Event != relay.EventShare || string(f.Data) != `{}` {
		t.Fatalf("sender got %s %s, want fs-share {}", f.Event, f.Data)
	}

	for _, chunk := range []string{`"aGk="`, `"eW8="`} {
		send(t, sender, relay.EventFileRaw, map[string]any{"uid": "rcv-1", "buffer": json.RawMessage(chunk)})
		f = recv(t, receiver)
		if f.Event != relay.EventShare || string(f.Data) != chunk {
			t.Fatalf("receiver got %s %s, want fs-share %s", f.Event, f.Data, chunk)
		}
	}
}

func TestServeWS_DisconnectLeavesRooms(t *testing.T) {
	hub := relay.NewHub(discardLogger(), nil)
	srv := httptest.NewServer(ServeWS(hub, discardLogger(), 0))
	defer srv.Close()

	conn := dial(t, srv)
	send(t, conn, relay.EventSenderJoin, relay.JoinRequest{UID: "gone"})
	waitFor(t, func() bool { return hub.Members("gone") == 1 })

	conn.Close()
	waitFor(t, func() bool { return hub.Stats().Rooms == 0 })
}

type idlePeer string

func (p idlePeer) ID() string                 { return string(p) }
func (idlePeer) Emit(string, ...interface{}) {}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name    string
		frame   Frame
		wantErr error
		anyErr  bool
		joined  string
	}{
		{name: "sender join", frame: Frame{Event: relay.EventSenderJoin, Data: json.RawMessage(`{"uid":"u1"}`)}, joined: "u1"},
		{name: "unknown event", frame: Frame{Event: "chat"}, wantErr: ErrUnknownEvent},
		{name: "malformed data", frame: Frame{Event: relay.EventFileRaw, Data: json.RawMessage(`[1,2`)}, anyErr: true},
		{name: "no data", frame: Frame{Event: relay.EventFileStart}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := relay.NewHub(discardLogger(), nil)
			err := dispatch(hub, idlePeer("p"), tt.frame)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("dispatch() error = %v, want %v", err, tt.wantErr)
				}
			case tt.anyErr:
				if err == nil {
					t.Error("dispatch() expected decode error")
				}
			case err != nil:
				t.Errorf("dispatch() error = %v", err)
			}
			if tt.joined != "" && hub.Members(tt.joined) != 1 {
				t.Errorf("Members(%q) = %d, want 1", tt.joined, hub.Members(tt.joined))
			}
		})
	}
}

// pollClient speaks engine.io v3 long-polling with text framing, the way a
// browser without websocket support reaches the socket.io endpoint.
type pollClient struct {
	t       *testing.T
	ctx     context.Context
	client  *http.Client
	url     string
	sid     string
	packets chan string
}

func connectPolling(ctx context.Context, t *testing.T, srv *httptest.Server) *pollClient {
	t.Helper()
	c := &pollClient{
		t:       t,
		ctx:     ctx,
		client:  srv.Client(),
		url:     srv.URL + "/socket.io/?EIO=3&transport=polling&b64=1",
		packets: make(chan string, 64),
	}

	first, err := c.fetch()
	if err != nil {
		t.Fatalf("handshake: %v", err)
	}
	if len(first) == 0 || !strings.HasPrefix(first[0], "0") {
		t.Fatalf("handshake packets = %q, want open packet", first)
	}
	var open struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal([]byte(first[0][1:]), &open); err != nil || open.SID == "" {
		t.Fatalf("open packet %q: %v", first[0], err)
	}
	c.sid = open.SID
	for _, p := range first[1:] {
		c.packets <- p
	}

	go c.poll()
	c.expect("40")
	return c
}

func (c *pollClient) endpoint() string {
	if c.sid == "" {
		return c.url
	}
	return c.url + "&sid=" + c.sid
}

// fetch runs one long-poll GET. The server registers a new session just
// after answering the handshake, so an unknown sid is retried briefly.
func (c *pollClient) fetch() ([]string, error) {
	deadline := time.Now().Add(2 * time.Second)
	for {
		req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, c.endpoint(), nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		switch {
		case resp.StatusCode == http.StatusOK:
			return decodePayload(string(body))
		case resp.StatusCode == http.StatusBadRequest && time.Now().Before(deadline):
			time.Sleep(10 * time.Millisecond)
		default:
			return nil, fmt.Errorf("poll status %d: %s", resp.StatusCode, body)
		}
	}
}

func (c *pollClient) poll() {
	for {
		packets, err := c.fetch()
		if err != nil {
			return
		}
		for _, p := range packets {
			select {
			case c.packets <- p:
			case <-c.ctx.Done():
				return
			}
		}
	}
}

// emit posts a socket.io event packet.
func (c *pollClient) emit(event string, data any) {
	c.t.Helper()
	raw, err := json.Marshal([]any{event, data})
	if err != nil {
		c.t.Fatal(err)
	}
	packet := "42" + string(raw)
	body := strconv.Itoa(len(packet)) + ":" + packet

	req, err := http.NewRequestWithContext(c.ctx, http.MethodPost, c.endpoint(), strings.NewReader(body))
	if err != nil {
		c.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "text/plain;charset=UTF-8")
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("post %s: %v", event, err)
	}
	defer resp.Body.Close()
	ack, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(ack) != "ok" {
		c.t.Fatalf("post %s: status %d body %s", event, resp.StatusCode, ack)
	}
}

// expect returns the next packet and fails unless it starts with prefix.
// Noop and heartbeat packets are skipped.
func (c *pollClient) expect(prefix string) string {
	c.t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case p := <-c.packets:
			if p == "6" || p == "2" || p == "3" {
				continue
			}
			if !strings.HasPrefix(p, prefix) {
				c.t.Fatalf("got packet %q, want prefix %q", p, prefix)
			}
			return p
		case <-timeout:
			c.t.Fatalf("no packet with prefix %q before deadline", prefix)
			return ""
		}
	}
}

// decodePayload splits a text payload of "<length>:<packet>" records.
func decodePayload(body string) ([]string, error) {
	var packets []string
	for body != "" {
		colon := strings.IndexByte(body, ':')
		if colon < 0 {
			return nil, fmt.Errorf("payload %q: missing length", body)
		}
		n, err := strconv.Atoi(body[:colon])
		if err != nil || colon+1+n > len(body) {
			return nil, fmt.Errorf("payload %q: bad length", body)
		}
		packets = append(packets, body[colon+1:colon+1+n])
		body = body[colon+1+n:]
	}
	return packets, nil
}

func TestDecodePayload(t *testing.T) {
	got, err := decodePayload(`2:407:42["x"]1:6`)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"40", `42["x"]`, "6"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("decodePayload() = %q, want %q", got, want)
	}
	if _, err := decodePayload("9:40"); err == nil {
		t.Error("decodePayload() accepted a short payload")
	}
}

func TestSocketServer_PollingTransfer(t *testing.T) {
	hub := relay.NewHub(discardLogger(), nil)
	srv := NewSocketServer(hub, discardLogger())
	go srv.Serve()
	ts := httptest.NewServer(srv)
	defer ts.Close()
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := connectPolling(ctx, t, ts)
	receiver := connectPolling(ctx, t, ts)

	sender.emit(relay.EventSenderJoin, relay.JoinRequest{UID: "A"})
	waitFor(t, func() bool { return hub.Members("A") == 1 })

	receiver.emit(relay.EventReceiverJoin, relay.ReceiverJoinRequest{UID: "B", SenderUID: "A"})
	if p := sender.expect(`42["init"`); p != `42["init","B"]` {
		t.Errorf("sender got %s, want init B", p)
	}

	sender.emit(relay.EventFileMeta, map[string]any{"uid": "B", "metadata": map[string]any{"name": "a.txt"}})
	if p := receiver.expect(`42["fs-meta"`); !strings.Contains(p, `"name":"a.txt"`) {
		t.Errorf("receiver got %s, want metadata forwarded", p)
	}

	receiver.emit(relay.EventFileStart, relay.FileStartRequest{UID: "A"})
	if p := sender.expect(`42["fs-share"`); p != `42["fs-share",{}]` {
		t.Errorf("sender got %s, want fs-share {}", p)
	}

	sender.emit(relay.EventFileRaw, map[string]any{"uid": "B", "buffer": "aGk="})
	if p := receiver.expect(`42["fs-share"`); p != `42["fs-share","aGk="]` {
		t.Errorf("receiver got %s, want fs-share chunk", p)
	}
}
