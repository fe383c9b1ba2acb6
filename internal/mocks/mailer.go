package mocks

import "sync"

// MockMailer implements mail.Mailer for testing
type MockMailer struct {
	// SendWelcomeFn allows test cases to mock the SendWelcome behavior
	SendWelcomeFn func(email, name string) error

	// SendCancellationFn allows test cases to mock the SendCancellation behavior
	SendCancellationFn func(email, name string) error

	// Err is returned by the default implementations when set
	Err error

	// Call tracking for verification. Sends happen on background
	// goroutines, so access is guarded.
	mu                sync.Mutex
	WelcomeSent       []string
	CancellationsSent []string
}

// SendWelcome implements the mail.Mailer interface
func (m *MockMailer) SendWelcome(email, name string) error {
	m.mu.Lock()
	m.WelcomeSent = append(m.WelcomeSent, email)
	m.mu.Unlock()

	if m.SendWelcomeFn != nil {
		return m.SendWelcomeFn(email, name)
	}
	return m.Err
}

// SendCancellation implements the mail.Mailer interface
func (m *MockMailer) SendCancellation(email, name string) error {
	m.mu.Lock()
	m.CancellationsSent = append(m.CancellationsSent, email)
	m.mu.Unlock()

	if m.SendCancellationFn != nil {
		return m.SendCancellationFn(email, name)
	}
	return m.Err
}

// WelcomeCount reports how many welcome mails were sent.
func (m *MockMailer) WelcomeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.WelcomeSent)
}

// CancellationCount reports how many cancellation mails were sent.
func (m *MockMailer) CancellationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CancellationsSent)
}
