package auth

import (
	"context"
	"testing"
	"time"

	"github.com/luckdow/sbstravel-sub000/internal/infrastructure/logging"
)

func TestMonitor_ForcesLogoutOnExpiry(t *testing.T) {
	db := testDB(t)
	svc, clock := testService(t, db)
	ctx := context.Background()

	registerTestCustomer(t, svc, "watched@example.com")
	if !svc.AuthState().IsAuthenticated {
		t.Fatal("precondition: session should be established")
	}

	monitor := NewMonitor(svc, time.Minute, logging.Default())

	// Session still valid: a check is a no-op
	monitor.check(ctx)
	if !svc.AuthState().IsAuthenticated {
		t.Fatal("check must not log out a valid session")
	}

	clock.Advance(25 * time.Hour)
	monitor.check(ctx)

	state := svc.AuthState()
	if state.IsAuthenticated {
		t.Error("expired session should be forced out by the monitor")
	}
	if state.User != nil || state.Token != "" || state.SessionExpiry != nil {
		t.Error("forced logout should reset the state to its empty form")
	}
}

func TestMonitor_NoopWithoutSession(t *testing.T) {
	db := testDB(t)
	svc, _ := testService(t, db)

	monitor := NewMonitor(svc, time.Minute, logging.Default())
	monitor.check(context.Background())

	if svc.AuthState().IsAuthenticated {
		t.Error("check must not fabricate a session")
	}
}

func TestMonitor_PrunesExpiredResetTokens(t *testing.T) {
	db := testDB(t)
	svc, clock := testService(t, db)
	ctx := context.Background()
	seedTestUser(t, db, "prune@example.com", RoleCustomer)

	if err := svc.RequestPasswordReset(ctx, "prune@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset() error = %v", err)
	}
	svc.Wait()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM reset_tokens").Scan(&count); err != nil {
		t.Fatalf("counting tokens: %v", err)
	}
	if count != 1 {
		t.Fatalf("token count = %d, want 1", count)
	}

	clock.Advance(2 * time.Hour)
	monitor := NewMonitor(svc, time.Minute, logging.Default())
	monitor.check(ctx)

	if err := db.QueryRow("SELECT COUNT(*) FROM reset_tokens").Scan(&count); err != nil {
		t.Fatalf("counting tokens: %v", err)
	}
	if count != 0 {
		t.Errorf("token count after prune = %d, want 0", count)
	}
}

func TestMonitor_RunStopsOnCancel(t *testing.T) {
	db := testDB(t)
	svc, _ := testService(t, db)

	monitor := NewMonitor(svc, 5*time.Millisecond, logging.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		monitor.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not stop after context cancellation")
	}
}

func TestNewMonitor_DefaultInterval(t *testing.T) {
	db := testDB(t)
	svc, _ := testService(t, db)

	monitor := NewMonitor(svc, 0, logging.Default())
	if monitor.interval != 60*time.Second {
		t.Errorf("interval = %v, want 60s default", monitor.interval)
	}
}
