package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/guregu/null.v4"

	"parking_ledger/internal/clock"
	"parking_ledger/internal/domain"
	"parking_ledger/internal/metrics"
	"parking_ledger/internal/repository"
)

// StatusNotifier is told about the lot status after every successful entry or exit.
type StatusNotifier interface {
	NotifyLotStatus(notification domain.LotStatusNotification)
}

// Ledger keeps lots, car profiles and parking sessions, and computes exit fees.
// Every operation holds a single lock, so concurrent callers see the same sequential
// behaviour a single-user form would.
type Ledger struct {
	mu sync.Mutex

	lotRepo     repository.ParkingLotRepository
	profileRepo repository.CarProfileRepository
	sessionRepo repository.ParkingSessionRepository

	clock    clock.Clock
	feeRate  decimal.Decimal
	location *time.Location
	logger   *zap.Logger
	notifier StatusNotifier
	newID    func() string
}

type LedgerOption func(*Ledger)

// WithFeeRate overrides DefaultFeeRate. Negative rates are ignored.
func WithFeeRate(rate decimal.Decimal) LedgerOption {
	return func(l *Ledger) {
		if !rate.IsNegative() {
			l.feeRate = rate
		}
	}
}

// WithLocation sets the zone used to display entry and exit times.
func WithLocation(loc *time.Location) LedgerOption {
	return func(l *Ledger) {
		if loc != nil {
			l.location = loc
		}
	}
}

func WithLogger(logger *zap.Logger) LedgerOption {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithNotifier(n StatusNotifier) LedgerOption {
	return func(l *Ledger) {
		l.notifier = n
	}
}

func NewLedger(
	lotRepo repository.ParkingLotRepository,
	profileRepo repository.CarProfileRepository,
	sessionRepo repository.ParkingSessionRepository,
	clk clock.Clock,
	opts ...LedgerOption,
) *Ledger {
	l := &Ledger{
		lotRepo:     lotRepo,
		profileRepo: profileRepo,
		sessionRepo: sessionRepo,
		clock:       clk,
		feeRate:     DefaultFeeRate,
		location:    time.Local,
		logger:      zap.NewNop(),
		newID:       func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) FeeRate() decimal.Decimal {
	return l.feeRate
}

// --- Lots ---

// RegisterLot adds a lot with every slot available. Lots are registered once at
// startup and listed in registration order.
func (l *Ledger) RegisterLot(ctx context.Context, dto domain.ParkingLotDTO) (*domain.ParkingLot, error) {
	if dto.Capacity < 0 {
		return nil, fmt.Errorf("parking lot %d: capacity %d must not be negative", dto.ID, dto.Capacity)
	}
	if dto.Location == "" {
		return nil, fmt.Errorf("parking lot %d: location is required", dto.ID)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	lot, err := l.lotRepo.Create(ctx, &domain.ParkingLot{
		ID:        dto.ID,
		Location:  dto.Location,
		Capacity:  dto.Capacity,
		Available: dto.Capacity,
	})
	if err != nil {
		return nil, fmt.Errorf("register parking lot %d: %w", dto.ID, err)
	}
	metrics.LotAvailable.WithLabelValues(metrics.LotLabel(lot.ID)).Set(float64(lot.Available))
	l.logger.Info("parking lot registered", zap.Int("lot", lot.ID), zap.String("location", lot.Location), zap.Int("capacity", lot.Capacity))
	return lot, nil
}

func (l *Ledger) Lots(ctx context.Context) ([]domain.ParkingLot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lotRepo.FindAll(ctx)
}

// Lot returns a single lot, or ErrInvalidLot.
func (l *Ledger) Lot(ctx context.Context, lotID int) (*domain.ParkingLot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.findLot(ctx, lotID)
}

// OpenSessions lists the cars currently parked in a lot.
func (l *Ledger) OpenSessions(ctx context.Context, lotID int) ([]domain.ParkingSession, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.findLot(ctx, lotID); err != nil {
		return nil, err
	}
	return l.sessionRepo.FindOpenByLot(ctx, lotID)
}

func (l *Ledger) findLot(ctx context.Context, lotID int) (*domain.ParkingLot, error) {
	lot, err := l.lotRepo.FindByID(ctx, lotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrInvalidLot, lotID)
		}
		return nil, fmt.Errorf("find parking lot %d: %w", lotID, err)
	}
	return lot, nil
}

// --- Entry / exit ---

type EntryInput struct {
	CarNumber   string
	OwnerName   string
	CarModel    string
	PhoneNumber string
	LotID       int
}

type EntryReceipt struct {
	Session domain.ParkingSession `json:"session"`
	Profile domain.CarProfile     `json:"profile"`
	Lot     domain.ParkingLot     `json:"lot"`
}

func (r EntryReceipt) Message() string {
	return fmt.Sprintf("Car %s entered parking lot %d.", r.Session.CarNumber, r.Session.LotID)
}

// RegisterEntry parks a car in a lot. It fails with ErrInvalidLot, ErrAlreadyParked or
// ErrNoSlotsAvailable without touching any state.
func (l *Ledger) RegisterEntry(ctx context.Context, in EntryInput) (EntryReceipt, error) {
	receipt, err := l.registerEntry(ctx, in)
	if err != nil {
		metrics.RejectionsTotal.WithLabelValues("entry", rejectionReason(err)).Inc()
		l.logger.Info("car entry refused", zap.String("car", in.CarNumber), zap.Int("lot", in.LotID), zap.Error(err))
		return EntryReceipt{}, err
	}

	metrics.EntriesTotal.WithLabelValues(metrics.LotLabel(receipt.Lot.ID)).Inc()
	metrics.LotAvailable.WithLabelValues(metrics.LotLabel(receipt.Lot.ID)).Set(float64(receipt.Lot.Available))
	l.logger.Info("car entered",
		zap.String("car", receipt.Session.CarNumber),
		zap.Int("lot", receipt.Lot.ID),
		zap.String("session", receipt.Session.ID),
		zap.Int("available", receipt.Lot.Available),
	)
	l.publishStatus(ctx)
	return receipt, nil
}

func (l *Ledger) registerEntry(ctx context.Context, in EntryInput) (EntryReceipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lot, err := l.findLot(ctx, in.LotID)
	if err != nil {
		return EntryReceipt{}, err
	}

	existing, err := l.sessionRepo.FindByCarNumber(ctx, in.CarNumber)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return EntryReceipt{}, fmt.Errorf("check open session for %s: %w", in.CarNumber, err)
	}
	if existing != nil && existing.IsOpen() {
		return EntryReceipt{}, &AlreadyParkedError{CarNumber: in.CarNumber, LotID: existing.LotID}
	}

	if lot.IsFull() {
		return EntryReceipt{}, fmt.Errorf("%w: lot %d", ErrNoSlotsAvailable, lot.ID)
	}

	profile := domain.CarProfile{
		CarNumber:   in.CarNumber,
		OwnerName:   in.OwnerName,
		CarModel:    in.CarModel,
		PhoneNumber: in.PhoneNumber,
	}
	session := domain.ParkingSession{
		ID:        l.newID(),
		CarNumber: in.CarNumber,
		LotID:     lot.ID,
		EntryTime: l.clock.Now(),
		ExitTime:  null.Time{},
		Fee:       decimal.Zero,
		Status:    domain.SessionOpen,
	}

	// The lot is updated first: it is the only write that can be refused.
	if err := l.lotRepo.UpdateAvailable(ctx, lot.ID, lot.Available-1); err != nil {
		return EntryReceipt{}, fmt.Errorf("occupy slot in lot %d: %w", lot.ID, err)
	}
	lot.Available--

	if err := l.profileRepo.Save(ctx, &profile); err != nil {
		return EntryReceipt{}, fmt.Errorf("save car profile %s: %w", in.CarNumber, err)
	}
	if err := l.sessionRepo.Save(ctx, &session); err != nil {
		return EntryReceipt{}, fmt.Errorf("save parking session %s: %w", in.CarNumber, err)
	}

	return EntryReceipt{Session: session, Profile: profile, Lot: *lot}, nil
}

type ExitReceipt struct {
	Session  domain.ParkingSession `json:"session"`
	Lot      domain.ParkingLot     `json:"lot"`
	Duration time.Duration         `json:"duration"`
}

func (r ExitReceipt) Message() string {
	return fmt.Sprintf("Car %s exited. Fee: $%s", r.Session.CarNumber, r.Session.Fee.StringFixed(2))
}

// RegisterExit closes the car's open session, charges the fee and frees the slot.
// A missing or already closed session yields ErrSessionNotFound and changes nothing.
func (l *Ledger) RegisterExit(ctx context.Context, carNumber string) (ExitReceipt, error) {
	receipt, err := l.registerExit(ctx, carNumber)
	if err != nil {
		metrics.RejectionsTotal.WithLabelValues("exit", rejectionReason(err)).Inc()
		l.logger.Info("car exit refused", zap.String("car", carNumber), zap.Error(err))
		return ExitReceipt{}, err
	}

	metrics.ExitsTotal.WithLabelValues(metrics.LotLabel(receipt.Lot.ID)).Inc()
	metrics.FeesCollected.Add(receipt.Session.Fee.InexactFloat64())
	metrics.LotAvailable.WithLabelValues(metrics.LotLabel(receipt.Lot.ID)).Set(float64(receipt.Lot.Available))
	l.logger.Info("car exited",
		zap.String("car", carNumber),
		zap.Int("lot", receipt.Lot.ID),
		zap.String("session", receipt.Session.ID),
		zap.Duration("duration", receipt.Duration),
		zap.String("fee", receipt.Session.Fee.StringFixed(2)),
	)
	l.publishStatus(ctx)
	return receipt, nil
}

func (l *Ledger) registerExit(ctx context.Context, carNumber string) (ExitReceipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	session, err := l.sessionRepo.FindByCarNumber(ctx, carNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ExitReceipt{}, fmt.Errorf("%w: %s", ErrSessionNotFound, carNumber)
		}
		return ExitReceipt{}, fmt.Errorf("find parking session %s: %w", carNumber, err)
	}
	if !session.IsOpen() {
		return ExitReceipt{}, fmt.Errorf("%w: %s", ErrSessionNotFound, carNumber)
	}

	lot, err := l.findLot(ctx, session.LotID)
	if err != nil {
		return ExitReceipt{}, err
	}

	exitTime := l.clock.Now()
	if exitTime.Before(session.EntryTime) {
		l.logger.Warn("exit time before entry time, clamping",
			zap.String("car", carNumber), zap.Time("entry", session.EntryTime), zap.Time("exit", exitTime))
		exitTime = session.EntryTime
	}
	fee := CalculateFee(session.EntryTime, exitTime, l.feeRate)

	closed := *session
	if err := newSessionLifecycle(&closed).close(ctx, exitTime, fee); err != nil {
		var invalid fsm.InvalidEventError
		var canceled fsm.CanceledError
		if errors.As(err, &invalid) || errors.As(err, &canceled) {
			return ExitReceipt{}, fmt.Errorf("%w: %s", ErrSessionNotFound, carNumber)
		}
		return ExitReceipt{}, fmt.Errorf("close parking session %s: %w", carNumber, err)
	}

	available := lot.Available + 1
	if available > lot.Capacity {
		l.logger.Warn("lot already at capacity on exit", zap.Int("lot", lot.ID), zap.Int("capacity", lot.Capacity))
		available = lot.Capacity
	}
	if err := l.lotRepo.UpdateAvailable(ctx, lot.ID, available); err != nil {
		return ExitReceipt{}, fmt.Errorf("free slot in lot %d: %w", lot.ID, err)
	}
	lot.Available = available

	if err := l.sessionRepo.Save(ctx, &closed); err != nil {
		return ExitReceipt{}, fmt.Errorf("save parking session %s: %w", carNumber, err)
	}

	return ExitReceipt{Session: closed, Lot: *lot, Duration: exitTime.Sub(closed.EntryTime)}, nil
}

// --- Read side ---

// Session returns the session stored for a car, open or closed.
func (l *Ledger) Session(ctx context.Context, carNumber string) (*domain.ParkingSession, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	session, err := l.sessionRepo.FindByCarNumber(ctx, carNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, carNumber)
		}
		return nil, err
	}
	return session, nil
}

// CarRecords lists every known car in first-entry order.
func (l *Ledger) CarRecords(ctx context.Context) ([]CarRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	profiles, err := l.profileRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list car profiles: %w", err)
	}

	records := make([]CarRecord, 0, len(profiles))
	for _, p := range profiles {
		record := CarRecord{Profile: p}
		session, err := l.sessionRepo.FindByCarNumber(ctx, p.CarNumber)
		switch {
		case err == nil:
			record.Session = session
		case !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("find parking session %s: %w", p.CarNumber, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// GetParkingStatus renders the availability of every lot as text.
func (l *Ledger) GetParkingStatus(ctx context.Context) (string, error) {
	lots, err := l.Lots(ctx)
	if err != nil {
		return "", err
	}
	return FormatParkingStatus(lots), nil
}

// GetAllCarInfo renders every known car and its session as text.
func (l *Ledger) GetAllCarInfo(ctx context.Context) (string, error) {
	records, err := l.CarRecords(ctx)
	if err != nil {
		return "", err
	}
	return FormatCarInfo(records, l.location), nil
}

func (l *Ledger) publishStatus(ctx context.Context) {
	if l.notifier == nil {
		return
	}
	lots, err := l.Lots(ctx)
	if err != nil {
		l.logger.Error("read lots for status notification", zap.Error(err))
		return
	}
	l.notifier.NotifyLotStatus(domain.LotStatusNotification{
		EventType: domain.StatusEventSnapshot,
		Lots:      lots,
		Status:    FormatParkingStatus(lots),
		Timestamp: l.clock.Now(),
	})
}
