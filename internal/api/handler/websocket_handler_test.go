package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"parking_ledger/internal/clock"
	"parking_ledger/internal/domain"
	"parking_ledger/internal/repository/memory"
	"parking_ledger/internal/service"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWebSocketManager_NotifyDoesNotBlock(t *testing.T) {
	t.Parallel()

	// Start is never called, so nothing drains the broadcast channel.
	wsm := NewWebSocketManager(nil)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			wsm.NotifyLotStatus(domain.LotStatusNotification{EventType: domain.StatusEventSnapshot})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("NotifyLotStatus blocked")
	}
}

func TestWebSocketHandler_BroadcastsLedgerMutations(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wsm := NewWebSocketManager(nil)
	go wsm.Start(ctx)

	ledger := service.NewLedger(
		memory.NewParkingLotRepository(),
		memory.NewCarProfileRepository(),
		memory.NewParkingSessionRepository(),
		clock.NewFixed(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)),
		service.WithNotifier(wsm),
	)
	if _, err := ledger.RegisterLot(ctx, domain.ParkingLotDTO{ID: 1, Location: "Main Gate", Capacity: 2}); err != nil {
		t.Fatalf("register lot: %v", err)
	}

	r := gin.New()
	r.GET("/ws", NewWebSocketHandler(wsm, ledger).HandleWebSocket)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first domain.LotStatusNotification
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read initial status: %v", err)
	}
	if first.Status != "Lot 1: 2 / 2 Available at Main Gate\n" {
		t.Errorf("unexpected initial status %q", first.Status)
	}

	waitFor(t, func() bool { return wsm.ClientCount() == 1 })

	_, err = ledger.RegisterEntry(ctx, service.EntryInput{
		CarNumber: "ABC123", OwnerName: "Ann", CarModel: "Civic", PhoneNumber: "555", LotID: 1,
	})
	if err != nil {
		t.Fatalf("register entry: %v", err)
	}

	var update domain.LotStatusNotification
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if update.EventType != domain.StatusEventSnapshot {
		t.Errorf("expected event %q, got %q", domain.StatusEventSnapshot, update.EventType)
	}
	if len(update.Lots) != 1 || update.Lots[0].Available != 1 {
		t.Errorf("expected lot 1 with 1 available, got %+v", update.Lots)
	}

	conn.Close()
	waitFor(t, func() bool { return wsm.ClientCount() == 0 })
}
