package handler

import (
	"net/http"

	"github.com/gearbox/workshop/internal/workshop/service"
	"github.com/gin-gonic/gin"
)

// AttachmentHandler serves ticket photo/document attachments.
type AttachmentHandler struct {
	svc *service.AttachmentService
}

func NewAttachmentHandler(svc *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{svc: svc}
}

// Upload handles POST /tickets/:id/attachments (multipart form, field
// "file").
func (h *AttachmentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "Missing file: "+err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		BadRequest(c, "Cannot read file: "+err.Error())
		return
	}
	defer file.Close()

	att, err := h.svc.Upload(
		c.Request.Context(),
		principalFrom(c),
		c.Param("id"),
		file,
		fileHeader.Filename,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, att)
}

// List handles GET /tickets/:id/attachments.
func (h *AttachmentHandler) List(c *gin.Context) {
	atts, err := h.svc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, atts)
}

// Download handles GET /tickets/:id/attachments/:attachmentID/download.
func (h *AttachmentHandler) Download(c *gin.Context) {
	att, object, err := h.svc.Download(c.Request.Context(), c.Param("attachmentID"))
	if err != nil {
		HandleError(c, err)
		return
	}
	defer object.Close()

	c.Header("Content-Disposition", `attachment; filename="`+att.FileName+`"`)
	contentType := att.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, att.Size, contentType, object, nil)
}
