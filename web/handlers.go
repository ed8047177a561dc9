package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sieflow/sieflow/analysis"
	"github.com/sieflow/sieflow/document"
	"github.com/sieflow/sieflow/sie"
)

// maxUploadBytes caps analyze uploads. SIE exports over a few megabytes
// are rare; 32 MiB is generous.
const maxUploadBytes = 32 << 20

// DocumentResponse summarizes a parsed document for JSON consumers.
type DocumentResponse struct {
	CompanyName   string               `json:"companyName"`
	OrgNumber     string               `json:"orgNumber,omitempty"`
	Currency      string               `json:"currency,omitempty"`
	FiscalYears   []FiscalYearResponse `json:"fiscalYears"`
	Accounts      int                  `json:"accounts"`
	Verifications int                  `json:"verifications"`
	Warnings      []string             `json:"warnings,omitempty"`
}

// FiscalYearResponse is one fiscal year in API shape.
type FiscalYearResponse struct {
	Index int    `json:"index"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// AnalyzeResponse is the full product of one uploaded file.
type AnalyzeResponse struct {
	Document DocumentResponse         `json:"document"`
	Ratios   analysis.Ratios          `json:"ratios"`
	Flow     *analysis.FlowGraph      `json:"flow"`
	Monthly  []analysis.MonthlyBucket `json:"monthly"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeParseFailure maps the error taxonomy onto HTTP statuses: structural
// failures of the uploaded data are the client's problem (422), anything
// else is ours (500).
func writeParseFailure(w http.ResponseWriter, err error) {
	var decodeErr *sie.DecodeError
	var unknownAccount *document.UnknownAccountError
	var malformed *document.MalformedDocumentError

	if errors.As(err, &decodeErr) || errors.As(err, &unknownAccount) || errors.As(err, &malformed) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

func documentResponse(doc *document.Document) DocumentResponse {
	years := make([]FiscalYearResponse, 0, len(doc.FiscalYears))
	for _, fy := range doc.FiscalYears {
		years = append(years, FiscalYearResponse{
			Index: fy.Index,
			Start: fy.Start.Format("2006-01-02"),
			End:   fy.End.Format("2006-01-02"),
		})
	}

	var warnings []string
	for _, warning := range doc.Warnings {
		warnings = append(warnings, warning.Error())
	}

	return DocumentResponse{
		CompanyName:   doc.CompanyName,
		OrgNumber:     doc.OrgNumber,
		Currency:      doc.Currency,
		FiscalYears:   years,
		Accounts:      len(doc.Accounts),
		Verifications: len(doc.Verifications),
		Warnings:      warnings,
	}
}

// handleAnalyze handles POST /api/analyze: a one-shot upload returning the
// full analysis. The body is either the raw SIE content or a multipart
// form with a "file" part. Optional ?year= selects the fiscal year index.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	raw, err := readUpload(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	doc, err := document.Build(r.Context(), raw)
	if err != nil {
		s.log.Info("analyze rejected", zap.Error(err))
		writeParseFailure(w, err)
		return
	}

	fy, ok := selectYear(doc, r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown fiscal year"})
		return
	}

	flowOpts, err := flowOptions(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Document: documentResponse(doc),
		Ratios:   analysis.CalculateRatios(r.Context(), doc, fy),
		Flow:     analysis.BuildFlowGraph(r.Context(), doc, fy, flowOpts...),
		Monthly:  analysis.MonthlyActivity(r.Context(), doc, fy),
	})
}

func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if mt := r.Header.Get("Content-Type"); len(mt) >= 19 && mt[:19] == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()
		return io.ReadAll(file)
	}
	return io.ReadAll(r.Body)
}

// selectYear picks the fiscal year from ?year=, defaulting to the current
// one.
func selectYear(doc *document.Document, r *http.Request) (document.FiscalYear, bool) {
	param := r.URL.Query().Get("year")
	if param == "" {
		return doc.CurrentFiscalYear(), true
	}
	index, err := strconv.Atoi(param)
	if err != nil {
		return document.FiscalYear{}, false
	}
	return doc.FiscalYear(index)
}

// flowOptions reads ?threshold= for the flow graph builder.
func flowOptions(r *http.Request) ([]analysis.FlowOption, error) {
	param := r.URL.Query().Get("threshold")
	if param == "" {
		return nil, nil
	}
	threshold, err := decimal.NewFromString(param)
	if err != nil {
		return nil, errors.New("invalid threshold: " + param)
	}
	return []analysis.FlowOption{analysis.WithThreshold(threshold)}, nil
}

// served returns the serve-file mode document, or false with a 409 when
// the server is upload-only or not yet loaded.
func (s *Server) served(w http.ResponseWriter) (*document.Document, bool) {
	s.mu.RLock()
	doc := s.doc
	s.mu.RUnlock()

	if doc == nil {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "no document loaded"})
		return nil, false
	}
	return doc, true
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.served(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, documentResponse(doc))
}

func (s *Server) handleGetRatios(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.served(w)
	if !ok {
		return
	}
	fy, ok := selectYear(doc, r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown fiscal year"})
		return
	}
	writeJSON(w, http.StatusOK, analysis.CalculateRatios(r.Context(), doc, fy))
}

func (s *Server) handleGetFlow(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.served(w)
	if !ok {
		return
	}
	fy, ok := selectYear(doc, r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown fiscal year"})
		return
	}
	opts, err := flowOptions(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, analysis.BuildFlowGraph(r.Context(), doc, fy, opts...))
}

func (s *Server) handleGetMonthly(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.served(w)
	if !ok {
		return
	}
	fy, ok := selectYear(doc, r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown fiscal year"})
		return
	}
	writeJSON(w, http.StatusOK, analysis.MonthlyActivity(r.Context(), doc, fy))
}
