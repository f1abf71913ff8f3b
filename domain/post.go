package domain

import (
	"strings"
	"time"
)

type Author struct {
	FirstName string
	LastName  string
}

type Post struct {
	ID      string
	Author  Author
	Title   string
	Content string
	Created time.Time
}

// PublicPost is the representation of a Post sent to API clients.
type PublicPost struct {
	ID      string    `json:"id"`
	Author  string    `json:"author"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Created time.Time `json:"created"`
}

// PostUpdate holds the whitelisted fields of a partial update. Nil fields are left untouched.
type PostUpdate struct {
	Title   *string
	Content *string
	Author  *Author
}

func NewPost(title, content string, author Author, now time.Time) Post {
	return Post{
		Author:  author,
		Title:   title,
		Content: content,
		Created: now.UTC().Truncate(time.Millisecond),
	}
}

func (p Post) AuthorName() string {
	return strings.TrimSpace(p.Author.FirstName + " " + p.Author.LastName)
}

func Serialize(p Post) PublicPost {
	return PublicPost{
		ID:      p.ID,
		Author:  p.AuthorName(),
		Title:   p.Title,
		Content: p.Content,
		Created: p.Created,
	}
}

func SerializeAll(posts []Post) []PublicPost {
	out := make([]PublicPost, 0, len(posts))
	for _, p := range posts {
		out = append(out, Serialize(p))
	}
	return out
}

func (u PostUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil && u.Author == nil
}

func (u PostUpdate) Apply(p *Post) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.Author != nil {
		p.Author = *u.Author
	}
}
