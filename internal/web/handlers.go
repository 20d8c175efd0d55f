package web

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/tabkit/internal/core"
	"github.com/JonMunkholm/tabkit/internal/logging"
	"github.com/JonMunkholm/tabkit/internal/web/templates"
)

// handleIndex renders the main page with the chunk and combine forms.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	cfg := s.service.Config()
	params := templates.IndexParams{
		Formats:          core.OutputFormats,
		Contracts:        s.service.Contracts().All(),
		DefaultContract:  cfg.DefaultContract,
		DefaultChunkSize: cfg.DefaultChunkSize,
		RequireAPIKey:    s.cfg.Security.RequireAPIKey,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Index(params).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render index", "error", err)
	}
}

// handleHealth reports liveness and job slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]any{
		"status": "ok",
		"jobs":   s.service.Limiter().Status(),
	})
}

// handleChunk splits one uploaded file into a zip of chunk files.
func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	if err := s.parseUpload(w, r, 1); err != nil {
		s.respondError(w, r, err)
		return
	}

	file, err := formFile(r, "file", "sheet")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	rows := 0
	if v := strings.TrimSpace(r.FormValue("rows")); v != "" {
		if rows, err = core.ParseChunkSize(v); err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	format, err := core.ParseOutputFormat(r.FormValue("format"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	art, err := s.service.Chunk(r.Context(), core.ChunkRequest{
		File:         file,
		RowsPerChunk: rows,
		Format:       format,
		Validate:     parseBoolField(r, "validate"),
		Contract:     strings.TrimSpace(r.FormValue("contract")),
		ArchiveName:  strings.TrimSpace(r.FormValue("archive")),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	sendArtifact(w, art)
}

// handleCombine merges the uploaded files into one output file.
func (s *Server) handleCombine(w http.ResponseWriter, r *http.Request) {
	if err := s.parseUpload(w, r, core.MaxUnionSources); err != nil {
		s.respondError(w, r, err)
		return
	}

	mode, err := core.ParseJoinMode(r.FormValue("mode"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	format, err := core.ParseOutputFormat(r.FormValue("format"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	files, err := combineSources(r, mode)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	art, err := s.service.Combine(r.Context(), core.CombineRequest{
		Mode:       mode,
		Files:      files,
		LeftKey:    parseKeyField(r, "left_key"),
		RightKey:   parseKeyField(r, "right_key"),
		Format:     format,
		OutputName: strings.TrimSpace(r.FormValue("output")),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	sendArtifact(w, art)
}

// SheetsResponse lists the sheets of an uploaded workbook.
type SheetsResponse struct {
	Sheets []string `json:"sheets"`
}

// handleSheets returns the sheet names of an uploaded workbook.
func (s *Server) handleSheets(w http.ResponseWriter, r *http.Request) {
	if err := s.parseUpload(w, r, 1); err != nil {
		s.respondError(w, r, err)
		return
	}

	file, err := formFile(r, "file", "")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	sheets, err := s.service.ListSheets(file.Data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, SheetsResponse{Sheets: sheets})
}

// ColumnsResponse lists the header cells of an uploaded file in order.
type ColumnsResponse struct {
	Columns []string `json:"columns"`
}

// handleColumns reads only the header row, so header-only uploads are
// accepted here even though chunk and inspect reject them.
func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	if err := s.parseUpload(w, r, 1); err != nil {
		s.respondError(w, r, err)
		return
	}

	file, err := formFile(r, "file", "sheet")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	cols, err := s.service.Columns(file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, ColumnsResponse{Columns: cols})
}

// handleInspect returns the header, row count and preview of an uploaded
// file for the column selectors.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	if err := s.parseUpload(w, r, 1); err != nil {
		s.respondError(w, r, err)
		return
	}

	file, err := formFile(r, "file", "sheet")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	in, err := s.service.Inspect(file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, in)
}

// handleContracts lists the header contracts.
func (s *Server) handleContracts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, s.service.Contracts().All())
}

// FormatInfo describes one output format.
type FormatInfo struct {
	Value     string `json:"value"`
	Label     string `json:"label"`
	Extension string `json:"extension"`
}

// handleFormats lists the output formats.
func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	formats := make([]FormatInfo, 0, len(core.OutputFormats))
	for _, f := range core.OutputFormats {
		formats = append(formats, FormatInfo{
			Value:     f.String(),
			Label:     f.Label(),
			Extension: f.Extension(),
		})
	}
	writeJSON(w, r, formats)
}
