package handler

import (
	"blogposts/domain"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/labstack/echo/v4"
)

var (
	errMalformedBody = errors.New("malformed request body")
	errEmptyTitle    = errors.New("`title` must not be empty")
)

// requiredPostFields is checked in order; the first missing field is reported.
var requiredPostFields = []string{"title", "content", "author"}

type authorPayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// postBody is a request body keyed by field, so presence can be told apart from zero values.
type postBody map[string]json.RawMessage

func readPostBody(c echo.Context) (postBody, error) {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, errMalformedBody
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return postBody{}, nil
	}
	// Unmarshal rejects trailing data after the object
	body := postBody{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, errMalformedBody
	}
	if body == nil {
		body = postBody{}
	}
	return body, nil
}

func (b postBody) has(field string) bool {
	raw, ok := b[field]
	return ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (b postBody) firstMissing(fields []string) (string, bool) {
	for _, f := range fields {
		if !b.has(f) {
			return f, true
		}
	}
	return "", false
}

func (b postBody) stringField(field string) (*string, error) {
	if !b.has(field) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(b[field], &s); err != nil {
		return nil, fmt.Errorf("`%s` must be a string", field)
	}
	return &s, nil
}

func (b postBody) authorField() (*domain.Author, error) {
	if !b.has("author") {
		return nil, nil
	}
	raw := bytes.TrimSpace(b["author"])
	var a authorPayload
	if !bytes.HasPrefix(raw, []byte("{")) || json.Unmarshal(raw, &a) != nil {
		return nil, errors.New("`author` must be an object with string `firstName` and `lastName`")
	}
	return &domain.Author{FirstName: a.FirstName, LastName: a.LastName}, nil
}

// whitelist copies only title, content and author out of the body.
func (b postBody) whitelist() (domain.PostUpdate, error) {
	title, err := b.stringField("title")
	if err != nil {
		return domain.PostUpdate{}, err
	}
	if title != nil && *title == "" {
		return domain.PostUpdate{}, errEmptyTitle
	}
	content, err := b.stringField("content")
	if err != nil {
		return domain.PostUpdate{}, err
	}
	author, err := b.authorField()
	if err != nil {
		return domain.PostUpdate{}, err
	}
	return domain.PostUpdate{Title: title, Content: content, Author: author}, nil
}
