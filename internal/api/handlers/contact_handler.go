package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/portfolio/internal/models"
	"github.com/yoockh/portfolio/internal/services"
)

type ContactHandler struct {
	svc services.ContactService
}

func NewContactHandler(svc services.ContactService) *ContactHandler {
	return &ContactHandler{svc: svc}
}

type contactListResponse struct {
	Message string                  `json:"message"`
	Data    []models.ContactMessage `json:"data"`
}

type contactStatusResponse struct {
	Message string                 `json:"message"`
	Data    *models.ContactMessage `json:"data"`
	Success bool                   `json:"success"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *ContactHandler) Submit(c *gin.Context) {
	var req services.ContactInput
	if !bindJSON(c, "ContactHandler.Submit", &req) {
		return
	}
	req.IPAddress = c.ClientIP()
	req.UserAgent = c.Request.UserAgent()

	if _, err := h.svc.Submit(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Thank you for your message! I will get back to you soon.",
		"success": true,
	})
}

func (h *ContactHandler) ListAll(c *gin.Context) {
	out, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, contactListResponse{
		Message: "Contact messages retrieved successfully",
		Data:    out,
	})
}

func (h *ContactHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if !bindJSON(c, "ContactHandler.UpdateStatus", &req) {
		return
	}

	m, err := h.svc.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, contactStatusResponse{
		Message: "Contact message status updated successfully",
		Data:    m,
		Success: true,
	})
}
