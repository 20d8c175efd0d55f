package web

// handlers_common.go holds the form parsing and response helpers shared by
// the handlers.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/tabkit/internal/core"
	"github.com/JonMunkholm/tabkit/internal/logging"
)

// multipartMemory is the part of a multipart form kept in memory; the rest
// spills to temporary files.
const multipartMemory = 32 << 20

// formOverhead is the allowance for non-file fields in a request body.
const formOverhead = 1 << 20

// parseUpload limits the body to files source files plus form fields and
// parses the multipart form. An oversized body maps to ErrFileTooLarge.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request, files int) error {
	limit := s.service.Config().MaxFileSize*int64(files) + formOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &core.Error{Kind: core.KindConfig, Op: "parse upload", Err: fmt.Errorf("%w: request exceeds %d bytes", core.ErrFileTooLarge, limit)}
		}
		return &core.Error{Kind: core.KindConfig, Op: "parse upload", Err: fmt.Errorf("%w: %v", core.ErrNoFile, err)}
	}
	return nil
}

// formFile reads one uploaded file. A missing field yields a zero
// SourceFile so the service reports the missing input. The request's
// "delimiter" field applies to the file.
func formFile(r *http.Request, field, sheetField string) (core.SourceFile, error) {
	delim, err := core.ParseDelimiter(strings.TrimSpace(r.FormValue("delimiter")))
	if err != nil {
		return core.SourceFile{}, err
	}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return core.SourceFile{}, nil
	}
	if err != nil {
		return core.SourceFile{}, fmt.Errorf("read form file %s: %w", field, err)
	}
	defer file.Close()

	return readSource(file, header, r.FormValue(sheetField), delim)
}

func readSource(file multipart.File, header *multipart.FileHeader, sheet string, delim rune) (core.SourceFile, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return core.SourceFile{}, fmt.Errorf("read %s: %w", header.Filename, err)
	}
	return core.SourceFile{
		Name:      header.Filename,
		Data:      data,
		Sheet:     strings.TrimSpace(sheet),
		Delimiter: delim,
	}, nil
}

// combineSources collects the combine inputs. A repeated "files" field is
// read in order; otherwise the numbered slots file_1..file_N are used. Join
// modes always yield two slots so a missing side is reported as such.
// Sheets are named by sheet_<i>, 1-based. One "delimiter" field covers
// every file.
func combineSources(r *http.Request, mode core.JoinMode) ([]core.SourceFile, error) {
	if headers := r.MultipartForm.File["files"]; len(headers) > 0 {
		delim, err := core.ParseDelimiter(strings.TrimSpace(r.FormValue("delimiter")))
		if err != nil {
			return nil, err
		}
		sources := make([]core.SourceFile, 0, len(headers))
		for i, h := range headers {
			f, err := h.Open()
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", h.Filename, err)
			}
			src, err := readSource(f, h, r.FormValue(fmt.Sprintf("sheet_%d", i+1)), delim)
			f.Close()
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
		}
		return sources, nil
	}

	_, hi := core.SourceLimits(mode)
	var sources []core.SourceFile
	for i := 1; i <= hi; i++ {
		src, err := formFile(r, fmt.Sprintf("file_%d", i), fmt.Sprintf("sheet_%d", i))
		if err != nil {
			return nil, err
		}
		if src.Name == "" && len(src.Data) == 0 && !mode.IsJoin() {
			continue
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// parseKeyField reads a 0-based column index. Empty or invalid text means
// no column was selected.
func parseKeyField(r *http.Request, name string) int {
	v := strings.TrimSpace(r.FormValue(name))
	if v == "" {
		return core.NoKey
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 0 {
		return core.NoKey
	}
	return i
}

// parseBoolField accepts checkbox and query style booleans.
func parseBoolField(r *http.Request, name string) bool {
	switch strings.ToLower(strings.TrimSpace(r.FormValue(name))) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}

// sendArtifact writes a job result as a file download.
func sendArtifact(w http.ResponseWriter, art *core.Artifact) {
	w.Header().Set("Content-Type", art.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.Header().Set("X-Job-ID", art.JobID)
	w.Header().Set("X-Status-Message", art.Message)
	w.WriteHeader(http.StatusOK)
	w.Write(art.Data)
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
