package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"condoflow/internal/access"
	"condoflow/internal/model"
	"condoflow/internal/repository"
)

func newTestFeed() (*Feed, *recorder) {
	rec := &recorder{}
	f := NewFeed(seeded(), rec, nop())
	f.now = clock
	return f, rec
}

func postIDs(posts []model.Post) []int64 {
	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestFeedList(t *testing.T) {
	ctx := context.Background()
	f, _ := newTestFeed()

	tests := []struct {
		tab    string
		search string
		ids    []int64
	}{
		{"all", "", []int64{1, 3, 2}},
		{"", "", []int64{1, 3, 2}},
		{"poll", "", []int64{2}},
		{"notice", "", []int64{1}},
		{"all", "chaves", []int64{3}},
		{"all", "ELEVADORES", []int64{1}},
		{"message", "natal", []int64{}},
	}
	for _, tc := range tests {
		t.Run(tc.tab+"/"+tc.search, func(t *testing.T) {
			posts, err := f.List(ctx, resident, tc.tab, tc.search)
			require.NoError(t, err)
			assert.Equal(t, tc.ids, postIDs(posts))
		})
	}
}

func TestFeedCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("poll keeps non blank options", func(t *testing.T) {
		f, rec := newTestFeed()
		post, err := f.Create(ctx, admin, PostDraft{Type: model.PostPoll, Title: "Horário da piscina", PollOptions: []string{"8h", " ", "9h"}})
		require.NoError(t, err)
		require.Len(t, post.PollOptions, 2)
		assert.Equal(t, model.PollOption{ID: 2, Text: "9h"}, post.PollOptions[1])
		assert.Equal(t, "Síndico", post.Author.Role)
		assert.Equal(t, []string{"post.created"}, rec.published())
	})

	t.Run("poll needs two options", func(t *testing.T) {
		f, _ := newTestFeed()
		_, err := f.Create(ctx, admin, PostDraft{Type: model.PostPoll, Title: "Enquete", PollOptions: []string{"Sim", ""}})
		var input *InputError
		require.ErrorAs(t, err, &input)
		assert.ErrorIs(t, err, ErrPollOptions)
		assert.Equal(t, "Adicione pelo menos 2 opções para a enquete.", input.Message)
	})

	t.Run("residents post messages only", func(t *testing.T) {
		f, _ := newTestFeed()
		post, err := f.Create(ctx, resident, PostDraft{Title: "Bicicleta encontrada", Content: "Na garagem."})
		require.NoError(t, err)
		assert.Equal(t, model.PostMessage, post.Type)
		assert.Equal(t, "Morador 302-B", post.Author.Role)

		_, err = f.Create(ctx, resident, PostDraft{Type: model.PostNotice, Title: "Aviso"})
		assert.True(t, access.IsAccessDenied(err))
		_, err = f.Create(ctx, resident, PostDraft{Title: "Fixado", Pinned: true})
		assert.True(t, access.IsAccessDenied(err))
	})

	t.Run("title required", func(t *testing.T) {
		f, _ := newTestFeed()
		_, err := f.Create(ctx, admin, PostDraft{Type: model.PostNotice})
		assert.ErrorIs(t, err, ErrRequiredField)
	})
}

func TestFeedInteractions(t *testing.T) {
	ctx := context.Background()
	f, _ := newTestFeed()

	post, err := f.ToggleLike(ctx, resident, 2)
	require.NoError(t, err)
	assert.Equal(t, 25, post.Likes)
	assert.True(t, post.UserLiked)

	post, err = f.ToggleLike(ctx, resident, 2)
	require.NoError(t, err)
	assert.Equal(t, 24, post.Likes)
	assert.False(t, post.UserLiked)

	post, err = f.Vote(ctx, resident, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 46, post.PollOptions[0].Votes)
	require.NotNil(t, post.UserVoted)
	assert.Equal(t, 1, *post.UserVoted)

	post, err = f.Vote(ctx, resident, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 45, post.PollOptions[0].Votes)
	assert.Equal(t, 33, post.PollOptions[1].Votes)

	posts, err := f.List(ctx, admin, "poll", "")
	require.NoError(t, err)
	assert.Nil(t, posts[0].UserVoted, "votes are per viewer")
	assert.Equal(t, 33, posts[0].PollOptions[1].Votes)

	_, err = f.Vote(ctx, resident, 2, 9)
	assert.ErrorIs(t, err, model.ErrUnknownOption)
	_, err = f.Vote(ctx, resident, 1, 1)
	assert.ErrorIs(t, err, ErrNotAPoll)
	_, err = f.ToggleLike(ctx, resident, 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFeedComment(t *testing.T) {
	ctx := context.Background()
	f, _ := newTestFeed()

	_, err := f.Comment(ctx, resident, 2, "   ")
	assert.ErrorIs(t, err, ErrRequiredField)

	post, err := f.Comment(ctx, admin, 2, "Votação até sexta.")
	require.NoError(t, err)
	require.Len(t, post.Comments, 2)
	c := post.Comments[1]
	assert.Equal(t, int64(4), c.ID)
	assert.Equal(t, "Sarah (Síndico)", c.Author)
	assert.True(t, c.IsAdmin)

	post, err = f.Comment(ctx, resident, 3, "São minhas!")
	require.NoError(t, err)
	require.Len(t, post.Comments, 1)
	assert.Equal(t, "Ricardo (302-B)", post.Comments[0].Author)
	assert.False(t, post.Comments[0].IsAdmin)
}

func TestFeedDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("authors and admins", func(t *testing.T) {
		f, _ := newTestFeed()
		assert.True(t, access.IsAccessDenied(f.Delete(ctx, resident, 3)))

		own, err := f.Create(ctx, resident, PostDraft{Title: "Vendo sofá"})
		require.NoError(t, err)
		assert.Equal(t, "2", own.Author.ID)
		require.NoError(t, f.Delete(ctx, resident, own.ID))

		require.NoError(t, f.Delete(ctx, admin, 3))
		assert.ErrorIs(t, f.Delete(ctx, admin, 3), repository.ErrNotFound)
	})

	t.Run("ownership follows the profile id, not the name", func(t *testing.T) {
		f, _ := newTestFeed()
		own, err := f.Create(ctx, resident, PostDraft{Title: "Vendo bicicleta"})
		require.NoError(t, err)

		impostor := resident
		impostor.Profile.Name = "Sarah Johnson"
		assert.True(t, access.IsAccessDenied(f.Delete(ctx, impostor, 1)))
		posts, err := f.List(ctx, admin, "notice", "")
		require.NoError(t, err)
		assert.Equal(t, []int64{1}, postIDs(posts))

		renamed := resident
		renamed.Profile.Name = "Ricardo A."
		renamed.Profile.Email = "ricardo@example.com"
		require.NoError(t, f.Delete(ctx, renamed, own.ID))
	})
}
