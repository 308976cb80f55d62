package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/quillboard/internal/middleware"
)

// CommentHandler はコメントのHTTPハンドラー。
// 未公開記事への一覧・投稿は記事ハンドラーと同じ公開範囲で制限する。
type CommentHandler struct {
	service  CommentServiceInterface
	articles ArticleReader
}

// NewCommentHandler はCommentHandlerを生成する。
func NewCommentHandler(service CommentServiceInterface, articles ArticleReader) *CommentHandler {
	return &CommentHandler{service: service, articles: articles}
}

type addCommentRequest struct {
	Content string `json:"content"`
}

// ListComments は記事のコメントを新しい順に返す。
// GET /api/articles/{id}/comments
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := visibleArticle(r, h.articles, id); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	comments, err := h.service.ListByArticle(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(comments))
}

// AddComment は記事にコメントを投稿する。
// POST /api/articles/{id}/comments
func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := visibleArticle(r, h.articles, id); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	var req addCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.service.AddComment(r.Context(), id, req.Content, *user)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// ToggleLike はコメントへのいいねを切り替える。
// POST /api/comments/{id}/like
func (h *CommentHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}

	c, err := h.service.ToggleLike(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
