package services

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/libris-app/libris/domain"
	"github.com/libris-app/libris/internal/notify"
)

// --- Mock UserRepository ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// --- Mock SessionRepository ---

type MockSessionRepository struct {
	mock.Mock
}

// SaveSession echoes the input back with store-assigned fields filled in
// when the expectation returns (nil, nil), mirroring the upsert read-back.
func (m *MockSessionRepository) SaveSession(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	args := m.Called(ctx, session)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Session), nil
	}
	saved := *session
	if saved.ID == "" {
		saved.ID = "sess-1"
	}
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now()
	}
	return &saved, nil
}

func (m *MockSessionRepository) FindSessionByUserDevice(ctx context.Context, userID, userAgent, device string) (*domain.Session, error) {
	args := m.Called(ctx, userID, userAgent, device)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) DeleteSession(ctx context.Context, sessionIdentity string) (string, error) {
	args := m.Called(ctx, sessionIdentity)
	return args.String(0), args.Error(1)
}

func (m *MockSessionRepository) CountUserSessions(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionRepository) CountActiveSessions(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionRepository) RevokeSession(ctx context.Context, sessionIdentity string) error {
	args := m.Called(ctx, sessionIdentity)
	return args.Error(0)
}

func (m *MockSessionRepository) RevokeUserSessions(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionRepository) ListSessionsByUserID(ctx context.Context, userID string) ([]*domain.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock CatalogRepository ---

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) ListBooks(ctx context.Context, params domain.ListParams) ([]*domain.Book, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Book), args.Error(1)
}

func (m *MockCatalogRepository) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *MockCatalogRepository) CreateBook(ctx context.Context, book *domain.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockCatalogRepository) ListAuthors(ctx context.Context, params domain.ListParams) ([]*domain.Author, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Author), args.Error(1)
}

func (m *MockCatalogRepository) GetAuthor(ctx context.Context, id string) (*domain.Author, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Author), args.Error(1)
}

// --- Stub password hasher ---

// stubHasher avoids bcrypt work in unit tests.
type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (stubHasher) Verify(hashedPassword, password string) error {
	if hashedPassword != "hashed:"+password {
		return fmt.Errorf("password mismatch")
	}
	return nil
}

// --- Recording notifier ---

type recordedNotification struct {
	Severity notify.Severity
	Subject  string
	Body     string
}

type recordingNotifier struct {
	sent []recordedNotification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, severity notify.Severity, subject, body string) error {
	n.sent = append(n.sent, recordedNotification{Severity: severity, Subject: subject, Body: body})
	return n.err
}
