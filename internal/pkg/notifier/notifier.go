package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/LukasBrandt/PaySweep/app/models"
	"github.com/LukasBrandt/PaySweep/app/repository"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

const (
	baseBackoffSeconds = 60
	maxBackoffSeconds  = 3600
	maxErrorLength     = 500
	batchLimit         = 100
)

// Sender delivers one email. mail.SendMail satisfies it via SenderFunc.
type Sender interface {
	Send(to, subject, body string) error
}

// SenderFunc adapts a plain function to the Sender interface.
type SenderFunc func(to, subject, body string) error

func (f SenderFunc) Send(to, subject, body string) error {
	return f(to, subject, body)
}

// Notifier durably delivers receipt emails with exponential backoff. All
// retry state lives in the receipt_email_statuses table; multiple instances
// can run a pass concurrently without coordination.
type Notifier struct {
	receipts  repository.ReceiptEmailRepository
	customers repository.CustomerRepository
	sender    Sender
}

// New creates a notifier from injected repositories and a sender.
func New(repos *repository.Repositories, sender Sender) *Notifier {
	return &Notifier{
		receipts:  repos.ReceiptEmail,
		customers: repos.Customer,
		sender:    sender,
	}
}

// NewFromDB creates a notifier from a GORM DB handle.
func NewFromDB(db *gorm.DB, sender Sender) *Notifier {
	return New(repository.NewRepositories(db), sender)
}

// Backoff computes the retry delay after the given number of failed
// attempts: base 60s, doubling per attempt, clamped at one hour.
func Backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	if attempts > 7 {
		// 60 * 2^6 already exceeds the cap.
		return maxBackoffSeconds * time.Second
	}
	seconds := baseBackoffSeconds << (attempts - 1)
	if seconds > maxBackoffSeconds {
		seconds = maxBackoffSeconds
	}
	return time.Duration(seconds) * time.Second
}

// ProcessDue sends every due receipt email once. A failing row is
// rescheduled and never blocks the rest of the batch. The return value is
// the number of rows examined.
func (n *Notifier) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	_ = ctx
	due, err := n.receipts.ListDue(now, batchLimit)
	if err != nil {
		return 0, fmt.Errorf("list due receipts: %w", err)
	}

	for _, status := range due {
		n.processOne(status, now)
	}
	return len(due), nil
}

func (n *Notifier) processOne(status models.ReceiptEmailStatus, now time.Time) {
	recipient, err := ResolveRecipient(&status.Order, n.customers)
	if err != nil {
		n.recordFailure(status, now, fmt.Errorf("resolve recipient: %w", err))
		return
	}
	if recipient.Kind == RecipientNone {
		// No address anywhere on the order; nothing to deliver.
		log.Infof("[Notifier] order %d has no recipient email, skipping", status.OrderID)
		return
	}

	subject, body := receiptMessage(&status.Order, recipient)
	if err := n.sender.Send(recipient.Email, subject, body); err != nil {
		n.recordFailure(status, now, err)
		return
	}

	if err := n.receipts.MarkSent(status.ID, now); err != nil {
		log.Errorf("[Notifier] mark sent for order %d failed: %v", status.OrderID, err)
	}
}

func (n *Notifier) recordFailure(status models.ReceiptEmailStatus, now time.Time, sendErr error) {
	attempts := status.Attempts + 1
	nextRetry := now.Add(Backoff(attempts))
	msg := truncateError(sendErr.Error())

	log.Warnf("[Notifier] send for order %d failed (attempt %d, retry at %s): %v",
		status.OrderID, attempts, nextRetry.Format(time.RFC3339), sendErr)
	if err := n.receipts.RecordFailure(status.ID, attempts, msg, nextRetry); err != nil {
		log.Errorf("[Notifier] record failure for order %d failed: %v", status.OrderID, err)
	}
}

func receiptMessage(order *models.Order, recipient Recipient) (string, string) {
	name := recipient.Name
	if name == "" {
		name = "customer"
	}
	subject := fmt.Sprintf("Your receipt for order %s", order.OrderNumber)
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>thank you for your order <strong>%s</strong>.</p>"+
			"<p>Amount charged: %s %s</p><p>This email is your receipt.</p>",
		name, order.OrderNumber, order.Total.StringFixed(2), order.Currency,
	)
	return subject, body
}

func truncateError(msg string) string {
	if len(msg) > maxErrorLength {
		return msg[:maxErrorLength]
	}
	return msg
}
