package model

import (
	"errors"
	"time"
)

type PostType string

const (
	PostNotice  PostType = "notice"
	PostPoll    PostType = "poll"
	PostMessage PostType = "message"
)

func (t PostType) Valid() bool {
	return t == PostNotice || t == PostPoll || t == PostMessage
}

var ErrUnknownOption = errors.New("unknown poll option")

// Author identifies who wrote a post. ID is the profile ID and does not change
// when the author edits their name.
type Author struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

type PollOption struct {
	ID    int    `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type Comment struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Avatar    string    `json:"avatar,omitempty"`
	Text      string    `json:"text"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Post is an entry of the communication feed.
type Post struct {
	ID          int64        `json:"id"`
	Type        PostType     `json:"type"`
	Author      Author       `json:"author"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	Image       string       `json:"image,omitempty"`
	Pinned      bool         `json:"pinned"`
	Urgent      bool         `json:"urgent"`
	Likes       int          `json:"likes"`
	PollOptions []PollOption `json:"poll_options,omitempty"`
	Comments    []Comment    `json:"comments"`
	CreatedAt   time.Time    `json:"created_at"`

	// Per-viewer state, filled by ForViewer.
	UserLiked bool `json:"user_liked"`
	UserVoted *int `json:"user_voted"`

	LikedBy map[string]bool `json:"-"`
	VotedBy map[string]int  `json:"-"`
}

// ToggleLike adds or withdraws the like of user.
func (p *Post) ToggleLike(user string) {
	if p.LikedBy == nil {
		p.LikedBy = make(map[string]bool)
	}
	if p.LikedBy[user] {
		delete(p.LikedBy, user)
		p.Likes--
		return
	}
	p.LikedBy[user] = true
	p.Likes++
}

// Vote records the choice of user. Voting again for the same option withdraws it,
// voting for another option moves the vote.
func (p *Post) Vote(user string, optionID int) error {
	target := -1
	for i := range p.PollOptions {
		if p.PollOptions[i].ID == optionID {
			target = i
			break
		}
	}
	if target < 0 {
		return ErrUnknownOption
	}
	if p.VotedBy == nil {
		p.VotedBy = make(map[string]int)
	}

	prev, voted := p.VotedBy[user]
	if voted {
		for i := range p.PollOptions {
			if p.PollOptions[i].ID == prev {
				p.PollOptions[i].Votes--
			}
		}
		delete(p.VotedBy, user)
		if prev == optionID {
			return nil
		}
	}
	p.PollOptions[target].Votes++
	p.VotedBy[user] = optionID
	return nil
}

// ForViewer returns a copy with the per-viewer fields set.
func (p *Post) ForViewer(user string) Post {
	out := *p
	out.PollOptions = append([]PollOption(nil), p.PollOptions...)
	out.Comments = append([]Comment{}, p.Comments...)
	out.UserLiked = p.LikedBy[user]
	out.UserVoted = nil
	if v, ok := p.VotedBy[user]; ok {
		out.UserVoted = &v
	}
	return out
}
