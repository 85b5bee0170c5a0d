package service

import (
	"context"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"github.com/shopspring/decimal"
	"gopkg.in/guregu/null.v4"

	"parking_ledger/internal/domain"
)

const (
	// EventExit closes an open session.
	EventExit = "event_exit"
)

// sessionLifecycle drives a single session through open -> closed. It is rebuilt from
// the stored status every time, so the session itself stays the source of truth.
type sessionLifecycle struct {
	*fsm.FSM
	session *domain.ParkingSession
}

func newSessionLifecycle(session *domain.ParkingSession) *sessionLifecycle {
	l := &sessionLifecycle{session: session}

	events := fsm.Events{
		{Name: EventExit, Src: []string{string(domain.SessionOpen)}, Dst: string(domain.SessionClosed)},
	}

	callbacks := fsm.Callbacks{
		"before_" + EventExit:                   wrapEvent(l.guardOpen),
		"enter_" + string(domain.SessionClosed): wrapEvent(l.enterClosed),
	}

	l.FSM = fsm.NewFSM(string(session.Status), events, callbacks)
	return l
}

// close fires EventExit with the exit time and fee to record.
func (l *sessionLifecycle) close(ctx context.Context, exitTime time.Time, fee decimal.Decimal) error {
	return l.Event(ctx, EventExit, exitTime, fee)
}

func (l *sessionLifecycle) guardOpen(ctx context.Context, e *fsm.Event) error {
	if l.session.ExitTime.Valid {
		e.Cancel(fsm.InvalidEventError{Event: e.Event, State: e.Src})
	}
	return nil
}

func (l *sessionLifecycle) enterClosed(ctx context.Context, e *fsm.Event) error {
	if len(e.Args) != 2 {
		return fmt.Errorf("close session %s: expected exit time and fee, got %d args", l.session.ID, len(e.Args))
	}
	exitTime, ok := e.Args[0].(time.Time)
	if !ok {
		return fmt.Errorf("close session %s: exit time has type %T", l.session.ID, e.Args[0])
	}
	fee, ok := e.Args[1].(decimal.Decimal)
	if !ok {
		return fmt.Errorf("close session %s: fee has type %T", l.session.ID, e.Args[1])
	}

	l.session.ExitTime = null.TimeFrom(exitTime)
	l.session.Fee = fee
	l.session.Status = domain.ParkingSessionStatus(e.Dst)
	return nil
}

func wrapEvent(fn func(ctx context.Context, e *fsm.Event) error) fsm.Callback {
	return func(ctx context.Context, e *fsm.Event) {
		if err := fn(ctx, e); err != nil {
			e.Err = err
		}
	}
}
