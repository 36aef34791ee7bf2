package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/survey-platform/internal/application"
	"github.com/linskybing/survey-platform/internal/domain/submission"
	"github.com/linskybing/survey-platform/pkg/response"
	"github.com/linskybing/survey-platform/pkg/utils"
)

type SubmissionHandler struct {
	submissions *application.SubmissionService
	review      *application.ReviewService
	query       *application.QueryService
}

func NewSubmissionHandler(submissions *application.SubmissionService, review *application.ReviewService, query *application.QueryService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions, review: review, query: query}
}

// Submit godoc
// @Summary Submit responses for a family or member
// @Description With as_draft the record is stored as a draft and does not count toward the per-entity cap.
// @Tags submissions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Form ID"
// @Param input body submission.SubmitDTO true "Submission"
// @Success 201 {object} submission.Submission
// @Failure 400 {object} response.ErrorResponse "Validation failed"
// @Failure 403 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Submission limit reached"
// @Failure 410 {object} response.ErrorResponse "Form or assignment expired"
// @Router /forms/{id}/submissions [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	formID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input submission.SubmitDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	sub, err := h.submissions.Submit(who, formID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// ListSubmissions godoc
// @Summary List submissions visible to the caller
// @Tags submissions
// @Security BearerAuth
// @Produce json
// @Param form_id query int false "Form ID"
// @Param status query string false "Status"
// @Param entity_type query string false "family or member"
// @Param q query string false "Search in form code, name and description"
// @Param from query string false "Created on or after (YYYY-MM-DD)"
// @Param to query string false "Created on or before (YYYY-MM-DD)"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} submission.Submission
// @Router /submissions [get]
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var filter submission.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindError(c, err)
		return
	}
	formID, err := utils.ParseQueryIDParam(c, "form_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}
	filter.FormID = formID
	subs, err := h.query.ListSubmissions(who, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

// GetSubmission godoc
// @Summary Get a submission
// @Tags submissions
// @Security BearerAuth
// @Produce json
// @Param id path int true "Submission ID"
// @Success 200 {object} submission.Submission
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	sub, err := h.query.GetSubmission(who, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// UpdateSubmission godoc
// @Summary Change responses of a submission
// @Tags submissions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Submission ID"
// @Param input body submission.UpdateDTO true "Changed responses"
// @Success 200 {object} submission.Submission
// @Router /submissions/{id} [put]
func (h *SubmissionHandler) UpdateSubmission(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input submission.UpdateDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	sub, err := h.submissions.Update(who, id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// DeleteSubmission godoc
// @Summary Delete a submission
// @Tags submissions
// @Security BearerAuth
// @Param id path int true "Submission ID"
// @Success 204
// @Router /submissions/{id} [delete]
func (h *SubmissionHandler) DeleteSubmission(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.submissions.Delete(who, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Finalize godoc
// @Summary Turn a draft into a counted submission
// @Tags submissions
// @Security BearerAuth
// @Produce json
// @Param id path int true "Submission ID"
// @Success 200 {object} submission.Submission
// @Failure 409 {object} response.ErrorResponse "Submission limit reached"
// @Router /submissions/{id}/finalize [post]
func (h *SubmissionHandler) Finalize(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	sub, err := h.submissions.Finalize(who, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// Transition godoc
// @Summary Change the review status of a submission
// @Tags review
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Submission ID"
// @Param input body submission.TransitionDTO true "Target status"
// @Success 200 {object} submission.Submission
// @Failure 403 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Illegal transition"
// @Router /submissions/{id}/transition [post]
func (h *SubmissionHandler) Transition(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input submission.TransitionDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	sub, err := h.review.Transition(who, id, input.Status, input.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// Reopen godoc
// @Summary Move an approved or rejected submission back to submitted
// @Tags review
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Submission ID"
// @Param input body submission.ReopenDTO false "Notes"
// @Success 200 {object} submission.Submission
// @Router /submissions/{id}/reopen [post]
func (h *SubmissionHandler) Reopen(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input submission.ReopenDTO
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindError(c, err)
			return
		}
	}
	sub, err := h.review.Reopen(who, id, input.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// BulkTransition godoc
// @Summary Apply one status change to many submissions
// @Description Every id is processed on its own; the response reports each outcome.
// @Tags review
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param input body submission.BulkTransitionDTO true "Ids and target status"
// @Success 200 {array} submission.BulkResult
// @Router /submissions/bulk-transition [post]
func (h *SubmissionHandler) BulkTransition(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var input submission.BulkTransitionDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.review.BulkTransition(who, input.IDs, input.Status, input.Notes))
}

// History godoc
// @Summary Status history of a submission, oldest first
// @Tags review
// @Security BearerAuth
// @Produce json
// @Param id path int true "Submission ID"
// @Param actor_id query int false "Actor"
// @Param from query string false "On or after (YYYY-MM-DD)"
// @Param to query string false "On or before (YYYY-MM-DD)"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} submission.Transition
// @Router /submissions/{id}/history [get]
func (h *SubmissionHandler) History(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var filter submission.HistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindError(c, err)
		return
	}
	actorID, err := utils.ParseQueryIDParam(c, "actor_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: err.Error()})
		return
	}
	filter.ActorID = actorID
	history, err := h.query.History(who, id, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
