package http

import (
	"bytes"
	"net/http"

	"budgetbuddy/internal/log"
	"budgetbuddy/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleExport streams the filtered transaction table as a download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if b := RequireGET(r); b != nil {
		b.Write(w)
		return
	}

	ctx := r.Context()
	user := s.userFrom(r)

	params, err := report.ParseExportParams(r.URL.Query(), s.engine.Now())
	if err != nil {
		requestLogger(r).InfoContext(ctx, "Invalid export request", log.FieldUser, user, log.FieldError, err)
		BadRequestError(err.Error()).Write(w)
		return
	}

	exp, err := s.engine.Export(ctx, report.ExportRequest{
		User:       user,
		Window:     params.Window,
		Categories: params.Categories,
	})
	if err != nil {
		status, msg := classify(err)
		s.logFailure(r, user, status, err)
		ErrorResponse(status, msg).Write(w)
		return
	}

	var buf bytes.Buffer
	filename, contentType := report.CSVFilename, "text/csv; charset=utf-8"
	if params.Format == report.FormatXLSX {
		filename, contentType = report.XLSXFilename, xlsxContentType
		err = exp.WriteXLSX(&buf)
	} else {
		err = exp.WriteCSV(&buf)
	}
	if err != nil {
		s.logFailure(r, user, http.StatusInternalServerError, err)
		InternalServerError("Could not build the download.").Write(w)
		return
	}

	requestLogger(r).InfoContext(ctx, "Export generated",
		log.FieldUser, user,
		log.FieldWindowStart, params.Window.Start.ISO(),
		log.FieldWindowEnd, params.Window.End.ISO(),
		log.FieldCategories, len(params.Categories),
		log.FieldCount, len(exp.Rows),
		log.FieldMalformed, exp.Skipped,
		"format", params.Format,
		log.FieldOperation, log.OpExport)

	NewHTMXResponse().
		Header("Content-Type", contentType).
		Header("Content-Disposition", `attachment; filename="`+filename+`"`).
		Body(buf.Bytes()).
		Write(w)
}
