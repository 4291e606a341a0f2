package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSender is a mock implementation of Sender interface.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, email *Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func TestMailer_Send_Success(t *testing.T) {
	t.Parallel()

	mockSender := &MockSender{}
	m := New(mockSender, Config{})

	mockSender.On("Send", mock.Anything, mock.MatchedBy(func(email *Email) bool {
		return email.To[0] == "ana@example.com" &&
			email.Subject == "Invoice" &&
			email.HTML == "<p>Hi</p>" &&
			len(email.Attachments) == 1
	})).Return(nil)

	err := m.Send(context.Background(), &Email{
		To:          []string{"ana@example.com"},
		Subject:     "Invoice",
		HTML:        "<p>Hi</p>",
		Attachments: []Attachment{{Filename: "a.pdf", Content: []byte("%PDF")}},
	})

	require.NoError(t, err)
	mockSender.AssertExpectations(t)
}

func TestMailer_Send_NoRecipient(t *testing.T) {
	t.Parallel()

	mockSender := &MockSender{}
	m := New(mockSender, Config{})

	err := m.Send(context.Background(), &Email{Subject: "x", HTML: "<p>x</p>"})
	require.ErrorIs(t, err, ErrNoRecipient)

	err = m.Send(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoRecipient)

	mockSender.AssertNotCalled(t, "Send")
}

func TestMailer_Send_NoContent(t *testing.T) {
	t.Parallel()

	mockSender := &MockSender{}
	m := New(mockSender, Config{})

	err := m.Send(context.Background(), &Email{To: []string{"a@example.com"}, Subject: "x"})
	require.ErrorIs(t, err, ErrNoContent)
	mockSender.AssertNotCalled(t, "Send")
}

func TestMailer_Send_SubjectFallback(t *testing.T) {
	t.Parallel()

	t.Run("uses fallback subject", func(t *testing.T) {
		t.Parallel()

		mockSender := &MockSender{}
		m := New(mockSender, Config{FallbackSubject: "Notification", DefaultReplyTo: "help@example.com"})

		mockSender.On("Send", mock.Anything, mock.MatchedBy(func(email *Email) bool {
			return email.Subject == "Notification" && email.ReplyTo == "help@example.com"
		})).Return(nil)

		original := &Email{To: []string{"a@example.com"}, HTML: "<p>x</p>"}
		require.NoError(t, m.Send(context.Background(), original))
		require.Empty(t, original.Subject, "caller's email is not modified")
		mockSender.AssertExpectations(t)
	})

	t.Run("rejects without fallback", func(t *testing.T) {
		t.Parallel()

		mockSender := &MockSender{}
		m := New(mockSender, Config{})

		err := m.Send(context.Background(), &Email{To: []string{"a@example.com"}, HTML: "<p>x</p>"})
		require.ErrorIs(t, err, ErrNoSubject)
		mockSender.AssertNotCalled(t, "Send")
	})
}

func TestMailer_Send_SenderFailure(t *testing.T) {
	t.Parallel()

	mockSender := &MockSender{}
	m := New(mockSender, Config{})

	senderErr := errors.New("smtp connection failed")
	mockSender.On("Send", mock.Anything, mock.Anything).Return(senderErr)

	err := m.Send(context.Background(), &Email{To: []string{"a@example.com"}, Subject: "x", HTML: "<p>x</p>"})

	require.ErrorIs(t, err, ErrSendFailed)
	require.ErrorIs(t, err, senderErr)
	mockSender.AssertExpectations(t)
}
