package handlers

import (
	"fmt"
	"net/http"
	"time"

	"regwizard/models"
	"regwizard/services/export"
	"regwizard/utils"

	"github.com/gin-gonic/gin"
)

// NoticeHeader carries the download notice, since the body is the file itself.
const NoticeHeader = "X-Notice"

var now = time.Now

func (hb *HandlerBundle) attach(c *gin.Context, format string, d models.Draft, generatedAt time.Time) {
	var (
		body, filename, contentType string
		notice                      models.Notice
	)
	switch format {
	case "csv":
		body, filename, contentType, notice = export.CSV(d), export.CSVFilename, export.CSVContentType, noticeCSVDownload
	default:
		format = "text"
		body, filename, contentType, notice = export.Text(d, generatedAt), export.TextFilename, export.TextContentType, noticeTextDownload
	}
	hb.recordExport(format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header(NoticeHeader, notice.Message)
	c.Data(http.StatusOK, contentType, []byte(body))
}

// ExportDraftTextHandler downloads the live draft as text.
func (hb *HandlerBundle) ExportDraftTextHandler(c *gin.Context) {
	hb.exportDraft(c, "text")
}

// ExportDraftCSVHandler downloads the live draft as CSV.
func (hb *HandlerBundle) ExportDraftCSVHandler(c *gin.Context) {
	hb.exportDraft(c, "csv")
}

func (hb *HandlerBundle) exportDraft(c *gin.Context, format string) {
	ctrl := hb.sessionController(c)
	if ctrl == nil {
		return
	}
	hb.attach(c, format, ctrl.Draft(), now())
}

func (hb *HandlerBundle) ExportSummaryTextHandler(c *gin.Context) {
	hb.exportSummary(c, "text")
}

func (hb *HandlerBundle) ExportSummaryCSVHandler(c *gin.Context) {
	hb.exportSummary(c, "csv")
}

// exportSummary downloads a submitted snapshot. The text artifact is stamped
// with the download time, like the draft export.
func (hb *HandlerBundle) exportSummary(c *gin.Context, format string) {
	ref := c.Param("ref")
	if ref == "" {
		ref = c.Query("ref")
	}
	summary, ok := hb.Wizard.Summary(ref)
	if !ok {
		utils.JSONError(c, http.StatusNotFound, "Summary not found", "")
		return
	}
	hb.attach(c, format, summary.Draft, now())
}
