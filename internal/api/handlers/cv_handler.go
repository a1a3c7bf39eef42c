package handlers

import (
	"errors"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/portfolio/internal/services"
	"github.com/yoockh/portfolio/internal/utils"
)

// room for multipart boundaries and the other form parts
const multipartOverhead = 64 << 10

type CVHandler struct {
	svc      services.CVService
	maxBytes int64
}

func NewCVHandler(svc services.CVService, maxBytes int64) *CVHandler {
	if maxBytes <= 0 {
		maxBytes = services.DefaultMaxCVBytes
	}
	return &CVHandler{svc: svc, maxBytes: maxBytes}
}

func (h *CVHandler) Upload(c *gin.Context) {
	const op = "CVHandler.Upload"

	u, ok := requireUser(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)

	fh, err := c.FormFile("cv")
	if err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			writeError(c, services.FileTooLargeError(op, h.maxBytes))
		case errors.Is(err, http.ErrMissingFile):
			writeError(c, utils.E(utils.CodeInvalidArgument, op, "Please upload a file", err))
		default:
			writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid multipart form", err))
		}
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer f.Close()

	cv, created, err := h.svc.Upload(c.Request.Context(), u, services.UploadInput{
		Reader:       f,
		Size:         fh.Size,
		DeclaredMIME: fh.Header.Get("Content-Type"),
		DeclaredName: fh.Filename,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, cv)
}

func (h *CVHandler) Mine(c *gin.Context) {
	u, ok := requireUser(c)
	if !ok {
		return
	}

	cv, err := h.svc.Mine(c.Request.Context(), u.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cv)
}

func (h *CVHandler) Download(c *gin.Context) {
	dl, err := h.svc.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	defer dl.Body.Close()

	c.DataFromReader(http.StatusOK, dl.Size, dl.CV.MimeType, dl.Body, map[string]string{
		"Content-Disposition": contentDisposition(dl.CV.OriginalName),
	})
}

func (h *CVHandler) ListAll(c *gin.Context) {
	out, err := h.svc.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *CVHandler) Approve(c *gin.Context) {
	approved, ok := bindApproval(c, "CVHandler.Approve")
	if !ok {
		return
	}

	cv, err := h.svc.SetApproval(c.Request.Context(), c.Param("id"), approved)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cv)
}

func (h *CVHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "CV deleted successfully"})
}

func contentDisposition(name string) string {
	if name == "" {
		return "attachment"
	}
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}
