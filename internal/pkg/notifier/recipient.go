package notifier

import (
	"errors"
	"strings"

	"github.com/LukasBrandt/PaySweep/app/models"
	"github.com/LukasBrandt/PaySweep/app/repository"
	"gorm.io/gorm"
)

// RecipientKind tags how the receipt recipient was resolved.
type RecipientKind int

const (
	RecipientNone RecipientKind = iota
	RecipientRegistered
	RecipientGuest
)

// Recipient is resolved once per notification attempt from the order: a
// registered customer profile wins, the guest contact snapshot is the
// fallback. A RecipientNone result means the row is skipped, not failed.
type Recipient struct {
	Kind       RecipientKind
	CustomerID uint
	Email      string
	Name       string
}

// ResolveRecipient walks the fallback chain for one order.
func ResolveRecipient(order *models.Order, customers repository.CustomerRepository) (Recipient, error) {
	if order.CustomerID != nil && *order.CustomerID > 0 {
		customer, err := customers.GetByID(*order.CustomerID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return Recipient{}, err
		}
		if err == nil && strings.TrimSpace(customer.Email) != "" {
			return Recipient{
				Kind:       RecipientRegistered,
				CustomerID: customer.ID,
				Email:      customer.Email,
				Name:       customer.Name,
			}, nil
		}
	}

	if strings.TrimSpace(order.GuestEmail) != "" {
		return Recipient{
			Kind:  RecipientGuest,
			Email: order.GuestEmail,
			Name:  order.GuestName,
		}, nil
	}

	return Recipient{Kind: RecipientNone}, nil
}
