package api

import (
	"net/http"

	"condoflow/internal/model"
	"condoflow/internal/service"
)

type postRequest struct {
	Type        string   `json:"type" validate:"omitempty,oneof=notice poll message"`
	Title       string   `json:"title" validate:"max=200"`
	Content     string   `json:"content" validate:"max=5000"`
	Image       string   `json:"image" validate:"omitempty,url"`
	Pinned      bool     `json:"pinned"`
	Urgent      bool     `json:"urgent"`
	PollOptions []string `json:"poll_options" validate:"max=10,dive,max=120"`
}

type voteRequest struct {
	OptionID int `json:"option_id" validate:"required,gt=0"`
}

type commentRequest struct {
	Text string `json:"text" validate:"max=1000"`
}

// GET /api/posts?tab=all|notice|poll|message&q=
func (s *HTTPServer) handleListPosts(w http.ResponseWriter, r *http.Request) {
	tab := r.URL.Query().Get("tab")
	if tab != "" && tab != "all" && !model.PostType(tab).Valid() {
		s.fail(w, r, badRequest("Aba desconhecida: %s.", tab))
		return
	}
	posts, err := s.deps.Feed.List(r.Context(), actorFrom(r), tab, r.URL.Query().Get("q"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// POST /api/posts
func (s *HTTPServer) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	post, err := s.deps.Feed.Create(r.Context(), actorFrom(r), service.PostDraft{
		Type:        model.PostType(req.Type),
		Title:       req.Title,
		Content:     req.Content,
		Image:       req.Image,
		Pinned:      req.Pinned,
		Urgent:      req.Urgent,
		PollOptions: req.PollOptions,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// DELETE /api/posts/{id}
func (s *HTTPServer) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.Feed.Delete(r.Context(), actorFrom(r), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/posts/{id}/like
func (s *HTTPServer) handleLikePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	post, err := s.deps.Feed.ToggleLike(r.Context(), actorFrom(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// POST /api/posts/{id}/vote
func (s *HTTPServer) handleVotePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req voteRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	post, err := s.deps.Feed.Vote(r.Context(), actorFrom(r), id, req.OptionID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// POST /api/posts/{id}/comments
func (s *HTTPServer) handleCommentPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req commentRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	post, err := s.deps.Feed.Comment(r.Context(), actorFrom(r), id, req.Text)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}
