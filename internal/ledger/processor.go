package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sheikh-saqib/midas-transaction-engine/internal/fraud"
	interfaces "github.com/sheikh-saqib/midas-transaction-engine/internal/interfaces"
	"github.com/sheikh-saqib/midas-transaction-engine/internal/models"
	"github.com/sheikh-saqib/midas-transaction-engine/internal/models/events"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Processor runs the per-message pipeline:
// parse -> fraud check -> sender lookup -> bonus -> balance update + ledger append.
//
// Events are processed strictly one at a time. The read-modify-write on the
// sender's balance relies on that, so mu is held for the whole call.
type Processor struct {
	store      interfaces.AccountStore
	guard      *fraud.Guard
	incentives interfaces.BonusProvider
	publisher  interfaces.EventPublisher
	logger     *zap.Logger
	now        func() time.Time

	mu sync.Mutex
}

type Option func(*Processor)

// WithPublisher publishes every outcome as an events.TransferProcessed message.
func WithPublisher(p interfaces.EventPublisher) Option {
	return func(proc *Processor) {
		proc.publisher = p
	}
}

func WithClock(now func() time.Time) Option {
	return func(proc *Processor) {
		proc.now = now
	}
}

func NewProcessor(store interfaces.AccountStore, guard *fraud.Guard, incentives interfaces.BonusProvider, logger *zap.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Processor{
		store:      store,
		guard:      guard,
		incentives: incentives,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process handles one raw payload and returns its terminal outcome. It never
// returns an error: failures are reported as FAILED or SKIPPED outcomes.
func (p *Processor) Process(ctx context.Context, payload []byte) models.Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := p.process(ctx, payload)
	p.report(ctx, out)
	return out
}

func (p *Processor) process(ctx context.Context, payload []byte) models.Outcome {
	event, err := ParseEvent(payload)
	if err != nil {
		return models.Outcome{Status: models.StatusFailed, Reason: models.ReasonParseError, Err: err}
	}

	out := models.Outcome{
		Sender:    event.Sender,
		Recipient: event.Recipient,
		Amount:    event.Amount,
	}

	if p.guard.Evaluate(event) == fraud.Block {
		out.Status = models.StatusBlocked
		return out
	}

	sess, err := p.store.Begin(ctx)
	if err != nil {
		return failed(out, &StoreError{Op: "begin", Err: err})
	}
	defer func() {
		if err := sess.Rollback(); err != nil {
			p.logger.Error("failed to release store session", zap.Error(err))
		}
	}()

	account, err := sess.FindAccount(ctx, event.Sender)
	if errors.Is(err, models.ErrAccountNotFound) {
		out.Status = models.StatusSkipped
		out.Reason = models.ReasonUnknownSender
		out.Err = &UnknownSenderError{Sender: event.Sender}
		return out
	}
	if err != nil {
		return failed(out, &StoreError{Op: "find account", Err: err})
	}

	// An unavailable incentive service degrades to a zero bonus.
	bonus := decimal.Zero
	if res := p.incentives.FetchBonus(ctx, event); res.OK() {
		bonus = res.Bonus()
	}
	out.Bonus = bonus

	balance := account.Balance.Sub(event.Amount).Add(bonus)

	if err := sess.UpdateBalance(ctx, account.Username, balance); err != nil {
		return failed(out, &StoreError{Op: "update balance", Err: err})
	}

	entry := models.LedgerEntry{
		ID:        uuid.New().String(),
		Sender:    event.Sender,
		Recipient: event.Recipient,
		Amount:    event.Amount,
		Bonus:     bonus,
		CreatedAt: p.now().UTC(),
	}
	if err := sess.AppendEntry(ctx, entry); err != nil {
		return failed(out, &StoreError{Op: "append entry", Err: err})
	}

	if err := sess.Commit(); err != nil {
		return failed(out, &StoreError{Op: "commit", Err: err})
	}

	out.Status = models.StatusAccepted
	out.Balance = balance
	return out
}

func failed(out models.Outcome, err *StoreError) models.Outcome {
	out.Status = models.StatusFailed
	out.Reason = models.ReasonStoreError
	out.Err = err
	return out
}

// report writes the single outcome record and, if configured, publishes it.
func (p *Processor) report(ctx context.Context, out models.Outcome) {
	fields := []zap.Field{
		zap.String("status", string(out.Status)),
		zap.String("sender", out.Sender),
		zap.String("recipient", out.Recipient),
		zap.String("amount", out.Amount.String()),
		zap.String("bonus", out.Bonus.String()),
	}
	if out.Status == models.StatusAccepted {
		fields = append(fields, zap.String("balance", out.Balance.String()))
	}
	if out.Reason != "" {
		fields = append(fields, zap.String("reason", out.Reason))
	}
	if out.Err != nil {
		fields = append(fields, zap.Error(out.Err))
	}

	switch out.Status {
	case models.StatusAccepted:
		p.logger.Info("transfer processed", fields...)
	case models.StatusFailed:
		p.logger.Error("transfer processed", fields...)
	default:
		p.logger.Warn("transfer processed", fields...)
	}

	if p.publisher == nil {
		return
	}

	event := events.TransferProcessed{
		EventID:    uuid.New().String(),
		Status:     string(out.Status),
		Reason:     out.Reason,
		Sender:     out.Sender,
		Recipient:  out.Recipient,
		Amount:     out.Amount,
		Bonus:      out.Bonus,
		OccurredAt: p.now().UTC(),
	}
	if out.Status == models.StatusAccepted {
		balance := out.Balance
		event.Balance = &balance
	}
	if out.Err != nil {
		event.Error = out.Err.Error()
	}

	if err := p.publisher.Publish(ctx, out.Sender, event); err != nil {
		p.logger.Warn("failed to publish transfer outcome", zap.String("sender", out.Sender), zap.Error(err))
	}
}
