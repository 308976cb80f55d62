package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/quillboard/internal/middleware"
	"github.com/hitoshi/quillboard/internal/model"
	"github.com/hitoshi/quillboard/internal/search"
)

// DiscoveryHandler は検索・ランキング・プロフィール・分析のHTTPハンドラー。
type DiscoveryHandler struct {
	search  SearchServiceInterface
	ranking RankingServiceInterface
}

// NewDiscoveryHandler はDiscoveryHandlerを生成する。
func NewDiscoveryHandler(searchSvc SearchServiceInterface, rankingSvc RankingServiceInterface) *DiscoveryHandler {
	return &DiscoveryHandler{
		search:  searchSvc,
		ranking: rankingSvc,
	}
}

func searchQuery(r *http.Request) search.Query {
	q := r.URL.Query()
	return search.Query{
		Text: q.Get("q"),
		Tag:  q.Get("tag"),
		Sort: q.Get("sort"),
	}
}

// Search は承認済み記事を検索する。
// GET /api/search?q=&tag=&sort=
func (h *DiscoveryHandler) Search(w http.ResponseWriter, r *http.Request) {
	articles, err := h.search.Discover(r.Context(), searchQuery(r))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(articles))
}

// Tags は承認済み記事のタグ一覧を返す。
// GET /api/tags
func (h *DiscoveryHandler) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.search.Tags(r.Context())
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(tags))
}

// Leaderboard はユーザーのリーダーボードを返す。
// GET /api/leaderboard?dimension=xp|blogs|likes&limit=
func (h *DiscoveryHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	entries, err := h.ranking.Leaderboard(r.Context(), r.URL.Query().Get("dimension"), limit)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(entries))
}

// Trending はトレンドスコア順の承認済み記事を返す。
// GET /api/trending?limit=
func (h *DiscoveryHandler) Trending(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	articles, err := h.ranking.Trending(r.Context(), limit)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(articles))
}

// Profile は著者のプロフィールと集計値を返す。
// GET /api/users/{id}/profile
func (h *DiscoveryHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.ranking.Profile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UserArticles は著者の記事を返す。承認済み以外の記事は本人と管理者のみ取得できる。
// GET /api/users/{id}/articles?status=&q=&tag=&sort=
func (h *DiscoveryHandler) UserArticles(w http.ResponseWriter, r *http.Request) {
	authorID := chi.URLParam(r, "id")
	status := model.ArticleStatus(r.URL.Query().Get("status"))

	if status != "" && status != model.ArticleStatusApproved && !isSelfOrAdmin(r, authorID) {
		middleware.WriteError(w, r, model.NewForbiddenError())
		return
	}

	articles, err := h.search.AuthorArticles(r.Context(), authorID, status, searchQuery(r))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(articles))
}

func isSelfOrAdmin(r *http.Request, userID string) bool {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		return false
	}
	return user.IsAdmin() || user.ID == userID
}

// Analytics は管理者向けの全体集計を返す。
// GET /api/admin/analytics
func (h *DiscoveryHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.ranking.Analytics(r.Context())
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}
