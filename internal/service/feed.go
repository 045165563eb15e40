package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"condoflow/internal/access"
	"condoflow/internal/events"
	"condoflow/internal/model"
	"condoflow/internal/repository"
)

// PostDraft is the composer form.
type PostDraft struct {
	Type        model.PostType
	Title       string
	Content     string
	Image       string
	Pinned      bool
	Urgent      bool
	PollOptions []string
}

// Feed is the communication board.
type Feed struct {
	repo   repository.PostRepository
	events events.Publisher
	logger zerolog.Logger
	now    func() time.Time

	// serializes read-modify-write of likes, votes and comments
	mu sync.Mutex
}

func NewFeed(repo repository.PostRepository, publisher events.Publisher, logger zerolog.Logger) *Feed {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &Feed{
		repo:   repo,
		events: publisher,
		logger: logger.With().Str("component", "feed").Logger(),
		now:    time.Now,
	}
}

func viewerKey(actor access.Actor) string {
	return actor.Profile.ID
}

// List returns the posts of tab matching search, pinned first and then
// newest first, with the viewer's like and vote filled in.
func (f *Feed) List(ctx context.Context, actor access.Actor, tab, search string) ([]model.Post, error) {
	posts, err := f.repo.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]model.Post, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		if tab != "" && tab != "all" && string(p.Type) != tab {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Content), needle) {
			continue
		}
		out = append(out, p.ForViewer(viewerKey(actor)))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Pinned != out[j].Pinned {
			return out[i].Pinned
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Create publishes a post. Notices and polls are reserved to the
// administration; pinning too.
func (f *Feed) Create(ctx context.Context, actor access.Actor, draft PostDraft) (*model.Post, error) {
	if draft.Type == "" {
		draft.Type = model.PostMessage
	}
	if !draft.Type.Valid() {
		return nil, invalidValue("type", "Tipo de publicação inválido: %s.", draft.Type)
	}
	if draft.Type != model.PostMessage || draft.Pinned || draft.Urgent {
		if err := actor.Require(access.Edit); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(draft.Title) == "" {
		return nil, required("title", "Informe o título da publicação.")
	}

	post := &model.Post{
		Type:      draft.Type,
		Author:    authorOf(actor),
		Title:     strings.TrimSpace(draft.Title),
		Content:   draft.Content,
		Image:     draft.Image,
		Pinned:    draft.Pinned,
		Urgent:    draft.Urgent,
		Comments:  []model.Comment{},
		CreatedAt: f.now(),
	}
	if draft.Type == model.PostPoll {
		for _, text := range draft.PollOptions {
			if text = strings.TrimSpace(text); text != "" {
				post.PollOptions = append(post.PollOptions, model.PollOption{ID: len(post.PollOptions) + 1, Text: text})
			}
		}
		if len(post.PollOptions) < 2 {
			return nil, &InputError{Field: "poll_options", Message: "Adicione pelo menos 2 opções para a enquete.", Err: ErrPollOptions}
		}
	}

	if err := f.repo.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	f.logger.Info().Int64("post_id", post.ID).Str("type", string(post.Type)).Msg("post created")
	if err := f.events.PublishJSON(events.PostCreated, post); err != nil {
		f.logger.Warn().Err(err).Msg("publish post event")
	}

	out := post.ForViewer(viewerKey(actor))
	return &out, nil
}

// ToggleLike adds or withdraws the actor's like.
func (f *Feed) ToggleLike(ctx context.Context, actor access.Actor, id int64) (*model.Post, error) {
	return f.mutate(ctx, actor, id, func(p *model.Post) error {
		p.ToggleLike(viewerKey(actor))
		return nil
	})
}

// Vote records the actor's choice on a poll. Voting twice for the same option
// withdraws the vote.
func (f *Feed) Vote(ctx context.Context, actor access.Actor, id int64, optionID int) (*model.Post, error) {
	return f.mutate(ctx, actor, id, func(p *model.Post) error {
		if p.Type != model.PostPoll {
			return &InputError{Field: "option", Message: "Esta publicação não é uma enquete.", Err: ErrNotAPoll}
		}
		if err := p.Vote(viewerKey(actor), optionID); err != nil {
			return &InputError{Field: "option", Message: "Opção inválida.", Err: err}
		}
		return nil
	})
}

// Comment appends a comment signed by the actor.
func (f *Feed) Comment(ctx context.Context, actor access.Actor, id int64, text string) (*model.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, required("text", "O comentário não pode estar vazio.")
	}
	return f.mutate(ctx, actor, id, func(p *model.Post) error {
		var next int64
		for _, c := range p.Comments {
			if c.ID > next {
				next = c.ID
			}
		}
		p.Comments = append(p.Comments, model.Comment{
			ID:        next + 1,
			Author:    commenterOf(actor),
			Avatar:    actor.Profile.Avatar,
			Text:      text,
			IsAdmin:   actor.Profile.Role == model.RoleAdmin,
			CreatedAt: f.now(),
		})
		return nil
	})
}

// Delete removes a post. Authors may remove their own messages.
func (f *Feed) Delete(ctx context.Context, actor access.Actor, id int64) error {
	p, err := f.repo.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Can.CanEdit && !actor.Owns(p.Author.ID) {
		return actor.Require(access.Edit)
	}
	if err := f.repo.DeletePost(ctx, id); err != nil {
		return err
	}
	f.logger.Info().Int64("post_id", id).Msg("post deleted")
	return nil
}

func (f *Feed) mutate(ctx context.Context, actor access.Actor, id int64, fn func(*model.Post) error) (*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, err := f.repo.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := f.repo.UpdatePost(ctx, p); err != nil {
		return nil, fmt.Errorf("update post %d: %w", id, err)
	}
	out := p.ForViewer(viewerKey(actor))
	return &out, nil
}

func authorOf(actor access.Actor) model.Author {
	role := "Morador"
	if actor.Profile.Role == model.RoleAdmin {
		role = "Síndico"
	} else if label := actor.UnitLabel(); label != "" {
		role = "Morador " + label
	}
	return model.Author{ID: actor.Profile.ID, Name: actor.Profile.Name, Role: role, Avatar: actor.Profile.Avatar}
}

func commenterOf(actor access.Actor) string {
	first := actor.Profile.Name
	if i := strings.IndexByte(first, ' '); i > 0 {
		first = first[:i]
	}
	if actor.Profile.Role == model.RoleAdmin {
		return first + " (Síndico)"
	}
	if label := actor.UnitLabel(); label != "" {
		return first + " (" + label + ")"
	}
	return first
}
