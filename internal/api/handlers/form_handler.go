package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/linskybing/survey-platform/internal/application"
	"github.com/linskybing/survey-platform/internal/domain/form"
	"github.com/linskybing/survey-platform/internal/domain/office"
	"github.com/linskybing/survey-platform/pkg/response"
	"github.com/linskybing/survey-platform/pkg/utils"
)

type FormHandler struct {
	forms       *application.FormService
	query       *application.QueryService
	attachments *application.AttachmentService
}

func NewFormHandler(forms *application.FormService, query *application.QueryService, attachments *application.AttachmentService) *FormHandler {
	return &FormHandler{forms: forms, query: query, attachments: attachments}
}

// caller resolves the authenticated caller, writing a 401 when it is missing.
func caller(c *gin.Context) (office.Caller, bool) {
	who, err := utils.GetCallerFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.ErrorResponse{Error: "Unauthorized"})
		return office.Caller{}, false
	}
	return who, true
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := utils.ParseIDParam(c, name)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "invalid " + name})
		return 0, false
	}
	return id, true
}

// CreateForm godoc
// @Summary Create a form
// @Tags forms
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param input body form.CreateFormDTO true "Form metadata"
// @Success 201 {object} form.Form
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /forms [post]
func (h *FormHandler) CreateForm(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var input form.CreateFormDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	f, err := h.forms.CreateForm(who, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

// ListForms godoc
// @Summary List forms visible to the caller
// @Tags forms
// @Security BearerAuth
// @Produce json
// @Param q query string false "Search in code, name and description"
// @Param active query bool false "Active flag"
// @Param target_entity query string false "family, member or both"
// @Param from query string false "Created on or after (YYYY-MM-DD)"
// @Param to query string false "Created on or before (YYYY-MM-DD)"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} form.FormDetail
// @Router /forms [get]
func (h *FormHandler) ListForms(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	var filter form.FormFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindError(c, err)
		return
	}
	forms, err := h.query.ListForms(who, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, forms)
}

// GetForm godoc
// @Summary Get a form with its fields and the caller's access
// @Tags forms
// @Security BearerAuth
// @Produce json
// @Param id path int true "Form ID"
// @Success 200 {object} form.FormDetail
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 410 {object} response.ErrorResponse "Assignment expired"
// @Router /forms/{id} [get]
func (h *FormHandler) GetForm(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.forms.GetFormWithFields(who, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// UpdateForm godoc
// @Summary Update form metadata
// @Tags forms
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Form ID"
// @Param input body form.UpdateFormDTO true "Changed fields"
// @Success 200 {object} form.Form
// @Router /forms/{id} [put]
func (h *FormHandler) UpdateForm(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input form.UpdateFormDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	f, err := h.forms.UpdateForm(who, id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, f)
}

// DeleteForm godoc
// @Summary Delete a form without submissions
// @Tags forms
// @Security BearerAuth
// @Param id path int true "Form ID"
// @Success 204
// @Failure 409 {object} response.ErrorResponse "Form has submissions"
// @Router /forms/{id} [delete]
func (h *FormHandler) DeleteForm(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.forms.DeleteForm(who, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetAccess godoc
// @Summary Resolved permissions of the caller on a form
// @Tags forms
// @Security BearerAuth
// @Produce json
// @Param id path int true "Form ID"
// @Success 200 {object} form.Access
// @Router /forms/{id}/access [get]
func (h *FormHandler) GetAccess(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	acc, err := h.forms.GetAccess(who, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}

// ListFields godoc
// @Summary List the fields of a form in display order
// @Tags fields
// @Security BearerAuth
// @Produce json
// @Param id path int true "Form ID"
// @Success 200 {array} form.FormField
// @Router /forms/{id}/fields [get]
func (h *FormHandler) ListFields(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	fields, err := h.forms.ListFields(who, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fields)
}

// AddField godoc
// @Summary Add a field to a form
// @Tags fields
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Form ID"
// @Param input body form.CreateFieldDTO true "Field definition"
// @Success 201 {object} form.FormField
// @Failure 400 {object} response.ErrorResponse "Invalid definition or duplicate field code"
// @Router /forms/{id}/fields [post]
func (h *FormHandler) AddField(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input form.CreateFieldDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	field, err := h.forms.AddField(who, id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, field)
}

// ReorderFields godoc
// @Summary Set the order of several fields at once
// @Tags fields
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Form ID"
// @Param input body form.ReorderFieldsDTO true "New orders"
// @Success 200 {array} form.FormField
// @Router /forms/{id}/fields/order [put]
func (h *FormHandler) ReorderFields(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input form.ReorderFieldsDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	fields, err := h.forms.ReorderFields(who, id, input.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fields)
}

// DeleteField godoc
// @Summary Remove a field from a form without submissions
// @Tags fields
// @Security BearerAuth
// @Param id path int true "Form ID"
// @Param field_id path int true "Field ID"
// @Success 204
// @Router /forms/{id}/fields/{field_id} [delete]
func (h *FormHandler) DeleteField(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	fieldID, ok := idParam(c, "field_id")
	if !ok {
		return
	}
	if err := h.forms.DeleteField(who, id, fieldID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateAssignment godoc
// @Summary Grant access to a form
// @Tags assignments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Form ID"
// @Param input body form.CreateAssignmentDTO true "Assignment"
// @Success 201 {object} form.Assignment
// @Router /forms/{id}/assignments [post]
func (h *FormHandler) CreateAssignment(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input form.CreateAssignmentDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	a, err := h.forms.CreateAssignment(who, id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// ListAssignments godoc
// @Summary List the assignments of a form
// @Tags assignments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Form ID"
// @Success 200 {array} form.Assignment
// @Router /forms/{id}/assignments [get]
func (h *FormHandler) ListAssignments(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	rows, err := h.forms.ListAssignments(who, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// DeleteAssignment godoc
// @Summary Revoke an assignment
// @Tags assignments
// @Security BearerAuth
// @Param id path int true "Form ID"
// @Param assignment_id path int true "Assignment ID"
// @Success 204
// @Router /forms/{id}/assignments/{assignment_id} [delete]
func (h *FormHandler) DeleteAssignment(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	assignmentID, ok := idParam(c, "assignment_id")
	if !ok {
		return
	}
	if err := h.forms.DeleteAssignment(who, id, assignmentID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadAttachment godoc
// @Summary Upload a file for a file field
// @Tags forms
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Form ID"
// @Param file formData file true "Attachment"
// @Success 201 {object} application.Attachment
// @Failure 400 {object} response.ErrorResponse "Missing or oversized file"
// @Router /forms/{id}/attachments [post]
func (h *FormHandler) UploadAttachment(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{Error: "file is required"})
		return
	}
	file, err := fh.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	att, err := h.attachments.Upload(c.Request.Context(), who, id, fh.Filename, fh.Header.Get("Content-Type"), fh.Size, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, att)
}
