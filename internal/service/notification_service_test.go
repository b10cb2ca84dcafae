package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbasket/bookbasket-api/internal/models"
	"github.com/bookbasket/bookbasket-api/pkg/config"
	"github.com/bookbasket/bookbasket-api/pkg/mail"
)

type mockSender struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *mockSender) Send(msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockSender) messages() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestNotificationServiceWelcome(t *testing.T) {
	sender := &mockSender{}
	svc := NewNotificationService(sender, nil, config.NotifyConfig{Workers: 1, BufferSize: 4})
	svc.Start(context.Background())
	defer svc.Stop()

	svc.Welcome(&models.Account{Name: "Sara", Email: "sara@example.com", Role: models.RoleStudent})
	svc.Welcome(&models.Account{Name: "Dina", Email: "dina@example.com", Role: models.RoleDonor})

	waitFor(t, func() bool { return len(sender.messages()) == 2 })

	msgs := sender.messages()
	subjects := []string{msgs[0].Subject, msgs[1].Subject}
	assert.Contains(t, subjects, "BookBasket - Registration Received")
	assert.Contains(t, subjects, "BookBasket - Donor Account Active")
}

func TestNotificationServiceDecision(t *testing.T) {
	sender := &mockSender{}
	svc := NewNotificationService(sender, nil, config.NotifyConfig{Workers: 1, BufferSize: 4})
	svc.Start(context.Background())
	defer svc.Stop()

	svc.Decision(&models.Account{Name: "Sara", Email: "sara@example.com"}, true)
	waitFor(t, func() bool { return len(sender.messages()) == 1 })

	msg := sender.messages()[0]
	assert.Equal(t, "sara@example.com", msg.To)
	assert.Equal(t, "BookBasket - Registration Approved", msg.Subject)
	assert.Contains(t, msg.Body, "approved")
}

func TestNotificationServiceNilSenderDrops(t *testing.T) {
	svc := NewNotificationService(nil, nil, config.NotifyConfig{Workers: 1, BufferSize: 4})
	svc.Start(context.Background())
	defer svc.Stop()

	require.NotPanics(t, func() {
		svc.Welcome(&models.Account{Name: "Sara", Email: "sara@example.com"})
	})
}
