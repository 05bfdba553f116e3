package exports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"BIHIN-backend/internal/inventory/rentals"
	"BIHIN-backend/internal/platform/apierr"
	"BIHIN-backend/internal/platform/auth"
	"BIHIN-backend/internal/platform/logger"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RentalSource は rentals.Service の必要な部分だけ
type RentalSource interface {
	ExportRows(ctx context.Context, actor auth.Actor, all bool, f rentals.HistoryFilter) ([]rentals.RentalView, error)
	Today() time.Time
}

type Options struct {
	CSVEncoding string // utf-8 / sjis
	PDFFontPath string // 空なら英語ラベル
}

type Handler struct {
	src  RentalSource
	opts Options
}

func NewHandler(src RentalSource, opts Options) *Handler {
	return &Handler{src: src, opts: opts}
}

func RegisterRoutes(r gin.IRoutes, h *Handler) {
	for _, f := range []Format{FormatCSV, FormatXLSX, FormatPDF} {
		// 自分の貸出
		r.GET("/exports/rentals."+string(f), h.export(f, false))
		// 全件（staff）。履歴と同じ検索条件を受ける
		r.GET("/admin/exports/rentals."+string(f), h.export(f, true))
	}
}

func (h *Handler) export(format Format, all bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f rentals.HistoryFilter
		if all {
			var err error
			if f, err = rentals.ParseHistoryFilter(c); err != nil {
				apierr.Abort(c, err)
				return
			}
		}

		ctx := c.Request.Context()
		rows, err := h.src.ExportRows(ctx, auth.ActorFrom(c), all, f)
		if err != nil {
			apierr.Abort(c, err)
			return
		}

		var buf bytes.Buffer
		contentType, err := h.render(&buf, format, rows)
		if errors.Is(err, ErrFontRequired) {
			logger.WarnContext(ctx, "pdf export without font", "error", err)
			apierr.Abort(c, apierr.ErrInternal("pdf export of Japanese text requires app.pdf_font_path to be configured"))
			return
		}
		if err != nil {
			logger.ErrorContext(ctx, "export failed", "format", string(format), "error", err)
			apierr.Abort(c, apierr.ErrInternal("failed to render export"))
			return
		}

		name := fmt.Sprintf("rentals_%s.%s", h.src.Today().Format("20060102"), format)
		if all {
			name = "all_" + name
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
		c.Data(http.StatusOK, contentType, buf.Bytes())
	}
}

func (h *Handler) render(buf *bytes.Buffer, format Format, rows []rentals.RentalView) (string, error) {
	ja := NewLabels(language.Japanese)

	switch format {
	case FormatCSV:
		return csvContentType(h.opts.CSVEncoding), WriteCSV(buf, ja.Header(), ToRecords(rows, ja), h.opts.CSVEncoding)
	case FormatXLSX:
		return contentTypeXLSX, WriteXLSX(buf, ja.Header(), ToRecords(rows, ja))
	case FormatPDF:
		l := ja
		if h.opts.PDFFontPath == "" {
			l = NewLabels(language.English)
		}
		return "application/pdf", WritePDF(buf, l.Title(), l.Header(), ToRecords(rows, l), h.opts.PDFFontPath)
	}
	return "", fmt.Errorf("unknown export format %q", format)
}
