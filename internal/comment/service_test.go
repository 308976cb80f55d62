package comment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/quillboard/internal/model"
	"github.com/hitoshi/quillboard/internal/repository"
	"github.com/hitoshi/quillboard/internal/store"
)

type plainSanitizer struct{}

func (plainSanitizer) SanitizeContent(raw string) string { return strings.TrimSpace(raw) }
func (plainSanitizer) SanitizeText(raw string) string    { return strings.TrimSpace(raw) }
func (plainSanitizer) PlainText(raw string) string       { return strings.TrimSpace(raw) }

// mockCommentRepo は任意のメソッドを差し替えられるCommentRepositoryモック。
type mockCommentRepo struct {
	*repository.StoreCommentRepo
	createFn func(ctx context.Context, c *model.Comment) error
}

func (m *mockCommentRepo) Create(ctx context.Context, c *model.Comment) error {
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	return m.StoreCommentRepo.Create(ctx, c)
}

func newTestService(t *testing.T) (*Service, *mockCommentRepo) {
	t.Helper()
	s := store.NewMemoryStore()
	articles := repository.NewStoreArticleRepo(s)
	if err := articles.Upsert(context.Background(), &model.Article{ID: "a1", Title: "t"}); err != nil {
		t.Fatal(err)
	}
	comments := &mockCommentRepo{StoreCommentRepo: repository.NewStoreCommentRepo(s)}

	svc := NewService(comments, articles, plainSanitizer{}, nil)
	current := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		current = current.Add(time.Second)
		return current
	}
	return svc, comments
}

var author = model.User{ID: "u1", Name: "Bob", PasswordHash: "x"}

// TestAddComment は正常系のコメント追加を検証する。
func TestAddComment(t *testing.T) {
	s, _ := newTestService(t)

	c, err := s.AddComment(context.Background(), "a1", "  Nice post  ", author)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID == "" || c.ArticleID != "a1" || c.Content != "Nice post" {
		t.Errorf("unexpected comment: %+v", c)
	}
	if c.Author.PasswordHash != "" {
		t.Error("author snapshot must not carry the password hash")
	}
	if len(c.Likes) != 0 {
		t.Errorf("Likes = %v", c.Likes)
	}
}

// TestAddComment_Errors は空本文・存在しない記事・保存失敗のエラーを検証する。
func TestAddComment_Errors(t *testing.T) {
	s, repo := newTestService(t)
	ctx := context.Background()

	if _, err := s.AddComment(ctx, "a1", "   ", author); !model.IsValidation(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
	if _, err := s.AddComment(ctx, "missing", "hi", author); !model.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}

	repo.createFn = func(context.Context, *model.Comment) error { return errors.New("write failed") }
	if _, err := s.AddComment(ctx, "a1", "hi", author); err == nil || model.IsValidation(err) {
		t.Errorf("expected infrastructure error, got %v", err)
	}
}

// TestListByArticle_NewestFirst はコメントが投稿日時の降順で返ることを検証する。
func TestListByArticle_NewestFirst(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	first, _ := s.AddComment(ctx, "a1", "first", author)
	second, _ := s.AddComment(ctx, "a1", "second", author)

	got, err := s.ListByArticle(ctx, "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != second.ID || got[1].ID != first.ID {
		t.Errorf("unexpected order: %+v", got)
	}

	none, _ := s.ListByArticle(ctx, "other")
	if len(none) != 0 {
		t.Errorf("expected no comments, got %d", len(none))
	}
}

// TestToggleLike はコメントいいねの往復と存在しないコメントのエラーを検証する。
func TestToggleLike(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	c, _ := s.AddComment(ctx, "a1", "like me", author)

	liked, err := s.ToggleLike(ctx, c.ID, "u2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(liked.Likes) != 1 {
		t.Errorf("Likes = %v", liked.Likes)
	}
	unliked, _ := s.ToggleLike(ctx, c.ID, "u2")
	if len(unliked.Likes) != 0 {
		t.Errorf("Likes after round trip = %v", unliked.Likes)
	}

	if _, err := s.ToggleLike(ctx, "missing", "u2"); !model.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
	if _, err := s.ToggleLike(ctx, c.ID, ""); !model.IsValidation(err) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

// TestComments_SurviveArticleDeletion は記事削除後もコメントが残ることを検証する。
func TestComments_SurviveArticleDeletion(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	_, _ = s.AddComment(ctx, "a1", "still here", author)

	if err := s.articles.Delete(ctx, "a1"); err != nil {
		t.Fatal(err)
	}
	got, _ := s.ListByArticle(ctx, "a1")
	if len(got) != 1 {
		t.Errorf("expected comment to survive, got %d", len(got))
	}
}
