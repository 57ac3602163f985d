package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gearbox/workshop/internal/workshop/service"
	"github.com/gin-gonic/gin"
)

// ReportHandler serves the read-side aggregates.
type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// TopSpenders handles GET /reports/top-spenders.
func (h *ReportHandler) TopSpenders(c *gin.Context) {
	spenders, err := h.svc.TopSpenders(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, spenders)
}

// TopMechanics handles GET /reports/top-mechanics.
func (h *ReportHandler) TopMechanics(c *gin.Context) {
	mechanics, err := h.svc.TopMechanics(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, mechanics)
}

// Export handles GET /reports/export (manager only): both aggregates as an
// xlsx workbook.
func (h *ReportHandler) Export(c *gin.Context) {
	buf, err := h.svc.Export(c.Request.Context(), principalFrom(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	fileName := fmt.Sprintf("workshop-reports-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
