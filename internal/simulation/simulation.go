package simulation

import (
	"context"
	"fmt"
	"io"

	interfaces "github.com/sheikh-saqib/midas-transaction-engine/internal/interfaces"
	"github.com/sheikh-saqib/midas-transaction-engine/internal/models"
	"github.com/shopspring/decimal"
)

const TestUser = "john_doe"

var StartingBalance = decimal.NewFromInt(1000)

// Messages are the payloads the queue would deliver in the demo run:
// a normal purchase, a fraud attempt and a second normal purchase.
var Messages = []string{
	`{"sender": "john_doe", "recipient": "amazon", "amount": 50.0}`,
	`{"sender": "john_doe", "recipient": "hacker_account", "amount": 5000.0}`,
	`{"sender": "john_doe", "recipient": "netflix", "amount": 15.0}`,
}

// StaticFeed replays a fixed list of payloads, then returns.
type StaticFeed struct {
	payloads [][]byte
}

func NewStaticFeed(payloads ...string) *StaticFeed {
	f := &StaticFeed{}
	for _, p := range payloads {
		f.payloads = append(f.payloads, []byte(p))
	}
	return f
}

func (f *StaticFeed) Run(ctx context.Context, handle interfaces.MessageHandler) error {
	for _, p := range f.payloads {
		if err := ctx.Err(); err != nil {
			return nil
		}
		handle(context.WithoutCancel(ctx), p)
	}
	return nil
}

func (f *StaticFeed) Close() error {
	return nil
}

// Step is what happened to one simulated message.
type Step struct {
	Payload string
	Outcome models.Outcome
	Balance decimal.Decimal
}

type Processor interface {
	Process(ctx context.Context, payload []byte) models.Outcome
}

// Run resets the test user, feeds Messages through p and writes a short
// report of each step to out.
func Run(ctx context.Context, store interfaces.AccountStore, p Processor, out io.Writer) ([]Step, error) {
	account, err := store.UpsertAccount(ctx, TestUser, StartingBalance)
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", TestUser, err)
	}
	fmt.Fprintf(out, "User %q (id %d) reset to balance %s\n", account.Username, account.ID, account.Balance)

	var steps []Step
	var lookupErr error
	feed := NewStaticFeed(Messages...)

	err = feed.Run(ctx, func(ctx context.Context, payload []byte) models.Outcome {
		fmt.Fprintf(out, "\n[queue] received message: %s\n", payload)
		outcome := p.Process(ctx, payload)

		current, err := store.GetAccount(ctx, account.ID)
		if err != nil {
			lookupErr = err
			return outcome
		}
		fmt.Fprintf(out, "   %s  current balance for %s: %s\n", outcome.Status, TestUser, current.Balance)

		steps = append(steps, Step{Payload: string(payload), Outcome: outcome, Balance: current.Balance})
		return outcome
	})
	if err != nil {
		return steps, err
	}
	if lookupErr != nil {
		return steps, fmt.Errorf("read balance: %w", lookupErr)
	}

	fmt.Fprintln(out, "\nsimulation complete")
	return steps, nil
}
