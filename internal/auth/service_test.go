package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/quillboard/internal/model"
	"github.com/hitoshi/quillboard/internal/repository"
	"github.com/hitoshi/quillboard/internal/store"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByIDFn    func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn func(ctx context.Context, email string) (*model.User, error)
	createFn      func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) List(_ context.Context) ([]*model.User, error) {
	return nil, nil
}

type mockSessionRepo struct {
	createFn     func(ctx context.Context, session *model.Session) error
	findByIDFn   func(ctx context.Context, id string) (*model.Session, error)
	deleteByIDFn func(ctx context.Context, id string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}

// --- compile-time interface checks ---
var _ repository.UserRepository = (*mockUserRepo)(nil)
var _ repository.SessionRepository = (*mockSessionRepo)(nil)

var testConfig = ServiceConfig{SessionMaxAge: 86400, BcryptCost: bcrypt.MinCost}

// newStoreService はインメモリストア上のリポジトリでServiceを生成する。
func newStoreService() *Service {
	s := store.NewMemoryStore()
	return NewService(repository.NewStoreUserRepo(s), repository.NewStoreSessionRepo(s), testConfig)
}

// --- テスト ---

// TestSignup_CreatesUserAndSession はサインアップでユーザーとセッションが作成されることを検証する。
func TestSignup_CreatesUserAndSession(t *testing.T) {
	ctx := context.Background()
	svc := newStoreService()

	res, err := svc.Signup(ctx, " Alice ", "alice@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	u := res.User
	if u.ID == "" || u.Name != "Alice" || u.Email != "alice@example.com" {
		t.Errorf("unexpected user: %+v", u)
	}
	if u.Role != model.RoleUser || u.XP != 0 {
		t.Errorf("role = %q, xp = %d", u.Role, u.XP)
	}
	if u.PasswordHash == "" || u.PasswordHash == "correct horse" {
		t.Error("password must be stored as a bcrypt hash")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct horse")); err != nil {
		t.Errorf("hash does not match password: %v", err)
	}

	if res.Session == nil || res.Session.UserID != u.ID {
		t.Fatalf("unexpected session: %+v", res.Session)
	}
	if !res.Session.ExpiresAt.After(time.Now()) {
		t.Error("session should not be expired")
	}

	got, err := svc.Authenticate(ctx, res.Session.ID)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("Authenticate() user = %q, want %q", got.ID, u.ID)
	}
}

// TestSignup_Validation は入力検証エラーを検証する。
func TestSignup_Validation(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{"empty name", "  ", "a@example.com", "password1"},
		{"empty email", "A", "", "password1"},
		{"invalid email", "A", "not-an-email", "password1"},
		{"display name form", "A", "Bob <bob@example.com>", "password1"},
		{"short password", "A", "a@example.com", "short"},
		{"too long password", "A", "a@example.com", strings.Repeat("x", 73)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newStoreService()
			_, err := svc.Signup(context.Background(), tt.userName, tt.email, tt.password)
			if !model.IsValidation(err) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

// TestSignup_DuplicateEmail はメールアドレス重複（大文字小文字無視）でAuthErrorになることを検証する。
func TestSignup_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newStoreService()

	if _, err := svc.Signup(ctx, "Alice", "alice@example.com", "password1"); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Signup(ctx, "Alice2", "ALICE@example.com", "password2")
	if !model.IsAuth(err) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmailExists {
		t.Errorf("expected %s, got %v", model.ErrCodeEmailExists, err)
	}
}

// TestSignup_CreateError はユーザー保存失敗時にインフラエラーが返ることを検証する。
func TestSignup_CreateError(t *testing.T) {
	userRepo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return errors.New("db error")
		},
	}
	svc := NewService(userRepo, &mockSessionRepo{}, testConfig)

	_, err := svc.Signup(context.Background(), "A", "a@example.com", "password1")
	if err == nil || model.IsValidation(err) || model.IsAuth(err) {
		t.Fatalf("expected infrastructure error, got %v", err)
	}
}

// TestLogin はログイン成功と失敗時のエラーを検証する。
func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc := newStoreService()
	signed, err := svc.Signup(ctx, "Alice", "alice@example.com", "password1")
	if err != nil {
		t.Fatal(err)
	}

	res, err := svc.Login(ctx, "Alice@Example.com", "password1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if res.User.ID != signed.User.ID {
		t.Errorf("login user = %q, want %q", res.User.ID, signed.User.ID)
	}
	if res.Session.ID == signed.Session.ID {
		t.Error("login must issue a new session")
	}

	if _, err := svc.Login(ctx, "alice@example.com", "wrong-password"); !model.IsAuth(err) {
		t.Errorf("wrong password: expected AuthError, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "password1"); !model.IsAuth(err) {
		t.Errorf("unknown user: expected AuthError, got %v", err)
	}
}

// TestLogin_RepositoryError はリポジトリエラーが認証エラーに変換されないことを検証する。
func TestLogin_RepositoryError(t *testing.T) {
	userRepo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewService(userRepo, &mockSessionRepo{}, testConfig)

	_, err := svc.Login(context.Background(), "a@example.com", "password1")
	if err == nil || model.IsAuth(err) {
		t.Fatalf("expected infrastructure error, got %v", err)
	}
}

// TestLogout_DeletesSession はログアウトでセッションが削除されることを検証する。
func TestLogout_DeletesSession(t *testing.T) {
	ctx := context.Background()

	var deletedSessionID string
	sessionRepo := &mockSessionRepo{
		deleteByIDFn: func(ctx context.Context, id string) error {
			deletedSessionID = id
			return nil
		},
	}
	svc := NewService(&mockUserRepo{}, sessionRepo, testConfig)

	if err := svc.Logout(ctx, "session-to-delete"); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if deletedSessionID != "session-to-delete" {
		t.Errorf("deleted session ID = %q, want %q", deletedSessionID, "session-to-delete")
	}

	if err := svc.Logout(ctx, ""); err == nil {
		t.Error("expected error for empty session ID")
	}
}

// TestAuthenticate_Unauthorized はセッションやユーザーが存在しない場合にUNAUTHORIZEDとなることを検証する。
func TestAuthenticate_Unauthorized(t *testing.T) {
	ctx := context.Background()

	orphan := &mockSessionRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			return &model.Session{ID: id, UserID: "deleted-user", ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}

	tests := []struct {
		name      string
		sessions  *mockSessionRepo
		sessionID string
	}{
		{"empty id", &mockSessionRepo{}, ""},
		{"missing or expired session", &mockSessionRepo{}, "expired"},
		{"user deleted", orphan, "s1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&mockUserRepo{}, tt.sessions, testConfig)
			_, err := svc.Authenticate(ctx, tt.sessionID)
			if !model.IsAuth(err) {
				t.Errorf("expected AuthError, got %v", err)
			}
		})
	}
}

// TestAuthenticate_SessionRepoError はセッション取得失敗がそのまま返ることを検証する。
func TestAuthenticate_SessionRepoError(t *testing.T) {
	sessions := &mockSessionRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			return nil, errors.New("db error")
		},
	}
	svc := NewService(&mockUserRepo{}, sessions, testConfig)

	_, err := svc.Authenticate(context.Background(), "s1")
	if err == nil || model.IsAuth(err) {
		t.Fatalf("expected infrastructure error, got %v", err)
	}
}

// TestEnsureAdmin は管理者の初期作成と冪等性を検証する。
func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	svc := newStoreService()

	admin, err := svc.EnsureAdmin(ctx, "", "admin@example.com", "admin-password")
	if err != nil {
		t.Fatalf("EnsureAdmin() error = %v", err)
	}
	if !admin.IsAdmin() || admin.Name != "Admin" {
		t.Errorf("unexpected admin: %+v", admin)
	}

	again, err := svc.EnsureAdmin(ctx, "Other", "ADMIN@example.com", "admin-password")
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != admin.ID {
		t.Errorf("EnsureAdmin created a second admin: %q vs %q", again.ID, admin.ID)
	}

	if _, err := svc.Login(ctx, "admin@example.com", "admin-password"); err != nil {
		t.Errorf("admin login failed: %v", err)
	}
}

// TestGenerateSessionID_Unique はセッションIDが64桁の16進数で重複しないことを検証する。
func TestGenerateSessionID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := generateSessionID()
		if err != nil {
			t.Fatal(err)
		}
		if len(id) != 64 {
			t.Fatalf("len(id) = %d, want 64", len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate session id %q", id)
		}
		seen[id] = true
	}
}
