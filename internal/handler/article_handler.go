package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/quillboard/internal/article"
	"github.com/hitoshi/quillboard/internal/middleware"
	"github.com/hitoshi/quillboard/internal/model"
)

// ArticleHandler は記事のライフサイクルとエンゲージメントのHTTPハンドラー。
type ArticleHandler struct {
	service ArticleServiceInterface
}

// NewArticleHandler はArticleHandlerを生成する。
func NewArticleHandler(service ArticleServiceInterface) *ArticleHandler {
	return &ArticleHandler{service: service}
}

type setStatusRequest struct {
	Status model.ArticleStatus `json:"status"`
}

type assistRequest struct {
	Content string `json:"content"`
}

// ListArticles は記事一覧を返す。
// GET /api/articles?status=&author=&tag=&tag=
// ステータス未指定の場合、管理者以外には承認済みの記事のみを返す。
func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.ArticleFilter{
		Status:   model.ArticleStatus(q.Get("status")),
		AuthorID: q.Get("author"),
		Tags:     q["tag"],
	}

	if filter.Status != "" && !filter.Status.Valid() {
		middleware.WriteError(w, r, model.NewInvalidStatusError(string(filter.Status)))
		return
	}
	if !h.canSeeUnpublished(r, filter) {
		filter.Status = model.ArticleStatusApproved
	}

	articles, err := h.service.ListArticles(r.Context(), filter)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(articles))
}

// canSeeUnpublished は未公開記事の閲覧可否を返す。管理者と自身の記事を見る著者のみ許可する。
func (h *ArticleHandler) canSeeUnpublished(r *http.Request, filter model.ArticleFilter) bool {
	if filter.Status == model.ArticleStatusApproved {
		return true
	}
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		return false
	}
	return user.IsAdmin() || (filter.AuthorID != "" && filter.AuthorID == user.ID)
}

// CreateArticle は記事を投稿する。投稿直後はモデレーション待ちとなる。
// POST /api/articles
func (h *ArticleHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}

	var input article.CreateInput
	if !decodeJSON(w, r, &input) {
		return
	}

	a, err := h.service.CreateArticle(r.Context(), input, *user)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// GetArticle は記事を返し、閲覧数を1増やす。
// 未公開の記事は管理者と著者以外にはNotFoundとし、閲覧数も数えない。
// GET /api/articles/{id}
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := visibleArticle(r, h.service, id); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	a, err := h.service.RecordView(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// visibleArticle は記事を取得する。未公開の記事は著者と管理者以外には存在しないものとして扱う。
func visibleArticle(r *http.Request, articles ArticleReader, id string) (*model.Article, error) {
	a, err := articles.GetArticle(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if a.Status != model.ArticleStatusApproved && !isOwnerOrAdmin(r, a) {
		return nil, model.NewArticleNotFoundError(id)
	}
	return a, nil
}

func isOwnerOrAdmin(r *http.Request, a *model.Article) bool {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		return false
	}
	return user.IsAdmin() || user.ID == a.AuthorID()
}

// DeleteArticle は記事を削除する。
// DELETE /api/articles/{id}
func (h *ArticleHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteArticle(r.Context(), chi.URLParam(r, "id")); err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetStatus は記事のモデレーション状態を変更する。
// PUT /api/articles/{id}/status
func (h *ArticleHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	a, err := h.service.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ToggleLike は記事へのいいねを切り替える。
// POST /api/articles/{id}/like
func (h *ArticleHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.service.ToggleLike)
}

// ToggleBookmark は記事のブックマークを切り替える。
// POST /api/articles/{id}/bookmark
func (h *ArticleHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.service.ToggleBookmark)
}

// toggle はユーザーのエンゲージメント状態を切り替え、更新後の記事を返す。
func (h *ArticleHandler) toggle(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, id, userID string) (*model.Article, error),
) {
	user := currentUser(w, r)
	if user == nil {
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := visibleArticle(r, h.service, id); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	a, err := fn(r.Context(), id, user.ID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Assist はエディタ向けのタイトル・タグ・キーワード候補とモデレーション判定を返す。
// POST /api/assist
func (h *ArticleHandler) Assist(w http.ResponseWriter, r *http.Request) {
	var req assistRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	suggestions, err := h.service.Assist(r.Context(), req.Content)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestions)
}
