package api

import (
	"fernnog/reading-plan/internal/bible"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ChapterParseRequest is free text such as "Genesis 1-3, Salmos 23".
type ChapterParseRequest struct {
	Text string `json:"text" binding:"required"`
}

type ChapterParseResponse struct {
	Chapters    []string `json:"chapters"`
	Diagnostics []string `json:"diagnostics"`
}

// ListBooks godoc
// @Summary List the books of the Bible in canonical order
// @Tags Books
// @Produce json
// @Success 200 {array} bible.Book
// @Router /books [get]
func ListBooks(c *gin.Context) {
	c.JSON(http.StatusOK, bible.Books())
}

// ParseChapters godoc
// @Summary Resolve a free-text chapter list
// @Description Returns the canonical chapters and the segments that were skipped.
// @Tags Books
// @Accept json
// @Produce json
// @Param body body ChapterParseRequest true "Chapter text"
// @Success 200 {object} ChapterParseResponse
// @Router /books/parse [post]
func ParseChapters(c *gin.Context) {
	var req ChapterParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	chapters, diagnostics := bible.ParseChapterSpecification(req.Text)
	if chapters == nil {
		chapters = []string{}
	}
	if diagnostics == nil {
		diagnostics = []string{}
	}
	c.JSON(http.StatusOK, ChapterParseResponse{Chapters: chapters, Diagnostics: diagnostics})
}
