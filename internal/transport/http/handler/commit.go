package handler

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gopher-classifieds/internal/app"
	"gopher-classifieds/internal/model"
	"gopher-classifieds/internal/ratelimit"
	"gopher-classifieds/internal/transport/http/middleware"
	"gopher-classifieds/internal/transport/http/response"
)

const (
	msgTooFrequent = "too frequent, please retry later"
	msgSubmitted   = "submitted, pending review"
)

type CommitHandler struct {
	submissionService *app.SubmissionService
	limiter           *ratelimit.Limiter
}

type formField struct {
	Name      string `json:"name"`
	Required  bool   `json:"required"`
	MaxLength int    `json:"max_length,omitempty"`
}

type typeChoice struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

func NewCommitHandler(submissionService *app.SubmissionService, limiter *ratelimit.Limiter) *CommitHandler {
	return &CommitHandler{submissionService: submissionService, limiter: limiter}
}

// Form describes the empty submission form.
func (h *CommitHandler) Form(c *gin.Context) {
	choices := make([]typeChoice, 0, 2)
	for _, t := range model.PostingTypes() {
		choices = append(choices, typeChoice{Value: int(t), Label: t.String()})
	}

	response.OK(c, gin.H{
		"fields": []formField{
			{Name: "title", Required: true, MaxLength: app.TitleMaxLength},
			{Name: "type", Required: true},
			{Name: "contact", MaxLength: app.ContactMaxLength},
			{Name: "location", MaxLength: app.LocationMaxLength},
			{Name: "phone", MaxLength: app.PhoneMaxLength},
			{Name: "weixin", MaxLength: app.WeixinMaxLength},
		},
		"types":      choices,
		"rate_limit": h.limiter.Rate().String(),
	})
}

// Submit checks the per-IP quota before reading the form. Every POST
// counts, valid or not.
func (h *CommitHandler) Submit(c *gin.Context) {
	decision := h.limiter.Check(c.Request.Context(), c.ClientIP())
	setRateHeaders(c, decision)

	var input app.SubmitInput
	bindErr := c.ShouldBind(&input)

	if !decision.Allowed {
		if decision.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
		}
		response.ErrorWithData(c, http.StatusTooManyRequests, response.CodeTooFrequent, msgTooFrequent, gin.H{"form": input})
		return
	}
	if bindErr != nil {
		response.Invalid(c, app.BindErrors(bindErr), gin.H{"form": input})
		return
	}

	posting, err := h.submissionService.Submit(c.Request.Context(), middleware.CurrentUserID(c), input)
	if err != nil {
		if verrs, ok := app.AsValidationErrors(err); ok {
			response.Invalid(c, verrs, gin.H{"form": input.Normalize()})
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "submit posting failed")
		return
	}

	response.Message(c, msgSubmitted, gin.H{
		"redirect": "/commit",
		"posting":  posting,
	})
}

func setRateHeaders(c *gin.Context, d ratelimit.Decision) {
	if d.Limit <= 0 {
		return
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	if !d.ResetAt.IsZero() {
		c.Header("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
	}
}
