package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gopher-classifieds/internal/app"
	"gopher-classifieds/internal/transport/http/response"
)

type PostingHandler struct {
	listingService *app.ListingService
}

type listQuery struct {
	Category string `form:"c"`
	Search   string `form:"q"`
	Page     string `form:"page"`
	PageSize string `form:"page_size"`
}

func NewPostingHandler(listingService *app.ListingService) *PostingHandler {
	return &PostingHandler{listingService: listingService}
}

// Index lists approved postings. Bad numbers in page or page_size fall back
// to the defaults instead of failing the request.
func (h *PostingHandler) Index(c *gin.Context) {
	var q listQuery
	_ = c.ShouldBindQuery(&q)

	result, err := h.listingService.List(c.Request.Context(), app.ListInput{
		Category: q.Category,
		Search:   q.Search,
		Page:     atoiOr(q.Page, 1),
		PageSize: atoiOr(q.PageSize, 0),
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list postings failed")
		return
	}
	response.OK(c, result)
}

func (h *PostingHandler) Search(c *gin.Context) {
	result, err := h.listingService.Search(c.Request.Context(), c.Query("q"), atoiOr(c.Query("page"), 1))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "search postings failed")
		return
	}
	response.OK(c, result)
}

func (h *PostingHandler) Detail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid posting id")
		return
	}

	posting, err := h.listingService.Get(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "posting not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch posting failed")
		return
	}
	response.OK(c, posting)
}

func atoiOr(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
