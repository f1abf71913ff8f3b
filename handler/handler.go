package handler

import (
	"blogposts/store"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	Store store.PostStore
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/posts", h.GetPosts)
	e.GET("/posts/:id", h.GetByID)
	e.GET("/posts/:id/preview", h.GetPreview)
	e.POST("/posts", h.NewPost)
	e.PUT("/posts/:id", h.EditPost)
	e.DELETE("/posts/:id", h.DeletePost)
	e.GET("/healthz", h.Health)

	// echo answers OPTIONS on known paths itself; route those to the JSON 404 instead
	for _, path := range []string{"/posts", "/posts/:id", "/posts/:id/preview", "/healthz"} {
		e.OPTIONS(path, notFound)
	}
}

func notFound(c echo.Context) error {
	return echo.ErrNotFound
}

// HTTPErrorHandler answers every unmatched route or method with a JSON 404.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	message := http.StatusText(code)
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		}
	}
	if code == http.StatusMethodNotAllowed {
		code = http.StatusNotFound
		message = http.StatusText(code)
	}
	if code >= http.StatusInternalServerError {
		c.Logger().Error(err)
	}
	if err := c.JSON(code, echo.Map{"message": message}); err != nil {
		c.Logger().Error(err)
	}
}

func (h *Handler) Health(c echo.Context) error {
	if err := h.Store.Ping(c.Request().Context()); err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "Database connection is down"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "Database connection is healthy"})
}
