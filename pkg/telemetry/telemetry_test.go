package telemetry

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"
)

func TestHub_BroadcastReachesClients(t *testing.T) {
	h := newHub("test")
	go h.run()

	c := &client{hub: h, send: make(chan []byte, 4)}
	h.register <- c
	waitForClients(t, h, 1)

	h.Broadcast([]byte(`{"tick":1}`))

	select {
	case msg := <-c.send:
		if string(msg) != `{"tick":1}` {
			t.Errorf("message: got %s", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("no message within 1s")
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := newHub("test")
	go h.run()

	slow := &client{hub: h, send: make(chan []byte, 1)}
	h.register <- slow
	waitForClients(t, h, 1)

	// First fills the buffer, second forces the drop.
	h.Broadcast([]byte(`1`))
	h.Broadcast([]byte(`2`))

	waitForClients(t, h, 0)
}

func waitForClients(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if h.ClientCount() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("client count: got %d, want %d", h.ClientCount(), want)
}

func TestServer_StatusReflectsPublish(t *testing.T) {
	s := NewServer(":0", High)
	s.Publish(State{
		Pose:          PoseUpdate{X: 8.774, Y: 4.026, HeadingDeg: 0},
		Speeds:        SpeedsUpdate{VX: 1.5},
		IntakeRunning: true,
		Tick:          42,
	})

	req, _ := http.NewRequest("GET", "/status", nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	var got State
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.Pose.X != 8.774 || got.Tick != 42 || !got.IntakeRunning {
		t.Errorf("state: got %+v", got)
	}
}

func TestServer_LowVerbosityStripsSpeeds(t *testing.T) {
	s := NewServer(":0", Low)
	s.Publish(State{
		Pose:   PoseUpdate{X: 1},
		Speeds: SpeedsUpdate{VX: 3},
		Tick:   7,
	})

	s.stateMu.RLock()
	got := s.state
	s.stateMu.RUnlock()

	if got.Speeds != (SpeedsUpdate{}) {
		t.Errorf("speeds survived low verbosity: %+v", got.Speeds)
	}
	if got.Pose.X != 1 || got.Tick != 7 {
		t.Errorf("pose/tick lost: %+v", got)
	}
}

func TestServer_NoneVerbosityPublishesNothing(t *testing.T) {
	s := NewServer(":0", None)
	s.Publish(State{Pose: PoseUpdate{X: 1}, Tick: 1})

	s.stateMu.RLock()
	got := s.state
	s.stateMu.RUnlock()

	if got != (State{}) {
		t.Errorf("state published at verbosity None: %+v", got)
	}
}
