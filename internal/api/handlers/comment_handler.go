package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/portfolio/internal/services"
	"github.com/yoockh/portfolio/internal/validation"
)

type CommentHandler struct {
	svc services.CommentService
}

func NewCommentHandler(svc services.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// approvalRequest is shared by the comment and CV moderation endpoints.
type approvalRequest struct {
	IsApproved *bool `json:"isApproved" validate:"required"`
}

func bindApproval(c *gin.Context, op string) (bool, bool) {
	var req approvalRequest
	if !bindJSON(c, op, &req) {
		return false, false
	}
	if err := validation.Struct(op, req); err != nil {
		writeError(c, err)
		return false, false
	}
	return *req.IsApproved, true
}

func (h *CommentHandler) ListPublic(c *gin.Context) {
	out, err := h.svc.ListPublic(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *CommentHandler) Create(c *gin.Context) {
	u, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.CreateCommentInput
	if !bindJSON(c, "CommentHandler.Create", &req) {
		return
	}

	comment, err := h.svc.Create(c.Request.Context(), u, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) ListAll(c *gin.Context) {
	out, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *CommentHandler) Approve(c *gin.Context) {
	approved, ok := bindApproval(c, "CommentHandler.Approve")
	if !ok {
		return
	}

	comment, err := h.svc.SetApproval(c.Request.Context(), c.Param("id"), approved)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Comment deleted successfully"})
}
