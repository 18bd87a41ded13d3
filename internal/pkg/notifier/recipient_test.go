package notifier

import (
	"testing"

	"github.com/LukasBrandt/PaySweep/app/models"
	"github.com/stretchr/testify/assert"
)

func TestResolveRecipient_RegisteredCustomer(t *testing.T) {
	customerID := uint(1)
	customers := &fakeCustomerRepo{customers: map[uint]*models.Customer{
		1: {ID: 1, Name: "Alex", Email: "alex@example.com"},
	}}
	order := &models.Order{CustomerID: &customerID, GuestEmail: "guest@example.com"}

	recipient, err := ResolveRecipient(order, customers)

	assert.NoError(t, err)
	assert.Equal(t, RecipientRegistered, recipient.Kind)
	assert.Equal(t, "alex@example.com", recipient.Email)
	assert.Equal(t, uint(1), recipient.CustomerID)
}

func TestResolveRecipient_FallsBackToGuestSnapshot(t *testing.T) {
	// Customer record is gone but the order kept its contact snapshot.
	missingID := uint(99)
	customers := &fakeCustomerRepo{customers: map[uint]*models.Customer{}}
	order := &models.Order{CustomerID: &missingID, GuestEmail: "guest@example.com", GuestName: "Guest"}

	recipient, err := ResolveRecipient(order, customers)

	assert.NoError(t, err)
	assert.Equal(t, RecipientGuest, recipient.Kind)
	assert.Equal(t, "guest@example.com", recipient.Email)
}

func TestResolveRecipient_None(t *testing.T) {
	customers := &fakeCustomerRepo{customers: map[uint]*models.Customer{}}
	order := &models.Order{}

	recipient, err := ResolveRecipient(order, customers)

	assert.NoError(t, err)
	assert.Equal(t, RecipientNone, recipient.Kind)
	assert.Empty(t, recipient.Email)
}

func TestResolveRecipient_RegisteredWithoutEmailFallsBack(t *testing.T) {
	customerID := uint(2)
	customers := &fakeCustomerRepo{customers: map[uint]*models.Customer{
		2: {ID: 2, Name: "No Mail", Email: "  "},
	}}
	order := &models.Order{CustomerID: &customerID, GuestEmail: "guest@example.com"}

	recipient, err := ResolveRecipient(order, customers)

	assert.NoError(t, err)
	assert.Equal(t, RecipientGuest, recipient.Kind)
}
