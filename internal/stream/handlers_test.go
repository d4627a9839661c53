package stream

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend-travelapp/internal/shared/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
)

// headerAuth trusts the X-User header; enough to exercise the ownership check.
func headerAuth(c *fiber.Ctx) error {
	c.Locals("user_id", c.Get("X-User"))
	return c.Next()
}

func serve(t *testing.T, hub *Hub) string {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler})
	RegisterRoutes(app.Group("/stream"), hub, headerAuth)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}
	go func() {
		_ = app.Listener(ln)
	}()
	t.Cleanup(func() { _ = app.Shutdown() })
	return "ws://" + ln.Addr().String()
}

func TestStreamHandlersUpgradeRequired(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler})
	RegisterRoutes(app.Group("/stream"), NewHub(nil), headerAuth)

	req := httptest.NewRequest(http.MethodGet, "/stream/ws/user-1", nil)
	req.Header.Set("X-User", "user-1")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if resp.StatusCode != http.StatusUpgradeRequired {
		t.Fatalf("expected 426 for non-websocket request, got %d", resp.StatusCode)
	}
}

func TestStreamHandlersRejectsOtherUser(t *testing.T) {
	base := serve(t, NewHub(nil))

	header := http.Header{}
	header.Set("X-User", "user-2")
	_, resp, err := websocket.DefaultDialer.Dial(base+"/stream/ws/user-1", header)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403")
	}
}

func TestStreamHandlersWebsocketDelivery(t *testing.T) {
	hub := NewHub(nil)
	base := serve(t, hub)

	header := http.Header{}
	header.Set("X-User", "user-1")
	conn, _, err := websocket.DefaultDialer.Dial(base+"/stream/ws/user-1", header)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	// registration happens after the upgrade completes
	deadline := time.Now().Add(time.Second)
	for {
		hub.mu.RLock()
		n := len(hub.clients["user-1"])
		hub.mu.RUnlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Publish("user-1", NewEvent(EventCommentCreated, map[string]string{"post_id": "p1"}))
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	if len(msg) == 0 {
		t.Fatalf("expected payload")
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
}
