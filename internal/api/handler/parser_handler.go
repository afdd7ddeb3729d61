package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/seckernel/kernel-api/internal/core/ports"
)

type ParserHandler struct {
	service ports.ParserService
}

func NewParserHandler(service ports.ParserService) *ParserHandler {
	return &ParserHandler{service: service}
}

// ParseURL fetches a page and returns its readable content. Pages that cannot
// be fetched still produce 200 with the URL as title and empty content.
//
// @Summary      Extract article from URL
// @Tags         parser
// @Accept       json
// @Produce      json
// @Param        body  body      parseURLRequest  true  "Page to parse"
// @Success      200   {object}  articleResponse
// @Failure      422   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /api/v1/parse-url [post]
func (h *ParserHandler) ParseURL(c echo.Context) error {
	var req parseURLRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	}

	article := h.service.ParseURL(c.Request().Context(), req.URL)
	return c.JSON(http.StatusOK, toArticleResponse(article))
}
