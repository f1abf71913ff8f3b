package handler

import (
	"blogposts/domain"
	"blogposts/store"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
)

const (
	msgInternalError = "Internal server error"
	msgPostNotFound  = "Post not found"
	msgIDMismatch    = "Request path id and request body id values must match"
)

func (h *Handler) GetPosts(c echo.Context) error {
	posts, err := h.Store.ListPosts(c.Request().Context())
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	return c.JSON(http.StatusOK, domain.SerializeAll(posts))
}

func (h *Handler) GetByID(c echo.Context) error {
	p, err := h.Store.GetPost(c.Request().Context(), c.Param("id"))
	if errors.Is(err, store.ErrPostNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"message": msgPostNotFound})
	}
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	return c.JSON(http.StatusOK, domain.Serialize(p))
}

func (h *Handler) NewPost(c echo.Context) error {
	body, err := readPostBody(c)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	if field, missing := body.firstMissing(requiredPostFields); missing {
		msg := fmt.Sprintf("Missing `%s` in request body", field)
		c.Logger().Debug(msg)
		return c.String(http.StatusBadRequest, msg)
	}
	fields, err := body.whitelist()
	if err != nil {
		c.Logger().Debug(err)
		return c.String(http.StatusBadRequest, err.Error())
	}

	p := domain.NewPost(*fields.Title, *fields.Content, *fields.Author, time.Now())
	p, err = h.Store.CreatePost(c.Request().Context(), p)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	return c.JSON(http.StatusCreated, domain.Serialize(p))
}

func (h *Handler) EditPost(c echo.Context) error {
	id := c.Param("id")
	body, err := readPostBody(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	bodyID, err := body.stringField("id")
	if err != nil || bodyID == nil || *bodyID != id {
		c.Logger().Debugf("%s: path %q", msgIDMismatch, id)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgIDMismatch})
	}

	update, err := body.whitelist()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	err = h.Store.UpdatePost(c.Request().Context(), id, update)
	if errors.Is(err, store.ErrPostNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"message": msgPostNotFound})
	}
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": msgInternalError})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeletePost(c echo.Context) error {
	if err := h.Store.DeletePost(c.Request().Context(), c.Param("id")); err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	return c.NoContent(http.StatusNoContent)
}

type PostDTO struct {
	ID        string
	Title     string
	Content   template.HTML
	Author    string
	CreatedAt string
}

// GetPreview renders the post content as sanitized HTML from Markdown.
func (h *Handler) GetPreview(c echo.Context) error {
	p, err := h.Store.GetPost(c.Request().Context(), c.Param("id"))
	if errors.Is(err, store.ErrPostNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"message": msgPostNotFound})
	}
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	return c.Render(http.StatusOK, "post-view.html", PostDTO{
		ID:        p.ID,
		Title:     p.Title,
		Content:   safeMd(p.Content),
		Author:    p.AuthorName(),
		CreatedAt: p.Created.Format(time.DateOnly),
	})
}

func mdToHTML(md string) []byte {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(md))

	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})

	return markdown.Render(doc, renderer)
}

func safeMd(content string) template.HTML {
	return template.HTML(bluemonday.UGCPolicy().SanitizeBytes(mdToHTML(content)))
}
