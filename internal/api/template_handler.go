package api

import (
	"net/http"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/planner"
	"alcyxob/liftlog/internal/service"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	templateService service.TemplateService
}

func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

type CreateTemplateRequest struct {
	Name  string        `json:"name" binding:"required"`
	Draft planner.Draft `json:"draft"`
}

type RenameTemplateRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	templates, err := h.templateService.List(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err, "retrieve templates")
		return
	}
	if templates == nil {
		templates = []domain.Template{}
	}
	c.JSON(http.StatusOK, templates)
}

func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	t, err := h.templateService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		abortWithServiceError(c, err, "retrieve template")
		return
	}
	c.JSON(http.StatusOK, t)
}

// CreateTemplate saves a builder draft under a name.
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	t, err := h.templateService.CreateFromDraft(c.Request.Context(), userID, req.Name, req.Draft)
	if err != nil {
		abortWithServiceError(c, err, "create template")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"template": t, "redirect": "/templates"})
}

func (h *TemplateHandler) RenameTemplate(c *gin.Context) {
	var req RenameTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.templateService.Rename(c.Request.Context(), userID, c.Param("id"), req.Name); err != nil {
		abortWithServiceError(c, err, "rename template")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.templateService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		abortWithServiceError(c, err, "delete template")
		return
	}
	c.Status(http.StatusNoContent)
}
