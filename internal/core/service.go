package core

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/tabkit/internal/logging"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Defaults applied when ServiceConfig leaves a field zero.
const (
	DefaultChunkSize         = 1000
	DefaultMaxFileSize int64 = 500 << 20
	DefaultOutputName        = "combined"
)

// ServiceConfig holds the limits a Service enforces.
type ServiceConfig struct {
	MaxFileSize       int64
	MaxConcurrentJobs int
	MaxWaitTime       time.Duration
	DecodeParallelism int
	DefaultChunkSize  int
	DefaultContract   string // contract checked when a chunk request validates without naming one
}

func (c ServiceConfig) withDefaults() ServiceConfig {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
	if c.DefaultChunkSize <= 0 {
		c.DefaultChunkSize = DefaultChunkSize
	}
	if c.DecodeParallelism <= 0 {
		c.DecodeParallelism = MaxUnionSources
	}
	return c
}

// Service runs chunk and combine jobs. It is safe for concurrent use.
type Service struct {
	cfg       ServiceConfig
	contracts *ContractRegistry
	limiter   *JobLimiter
}

// NewService creates a Service. A nil registry means no contracts.
func NewService(cfg ServiceConfig, contracts *ContractRegistry) *Service {
	if contracts == nil {
		contracts = NewContractRegistry()
	}
	cfg = cfg.withDefaults()
	return &Service{
		cfg:       cfg,
		contracts: contracts,
		limiter:   NewJobLimiter(cfg.MaxConcurrentJobs, cfg.MaxWaitTime),
	}
}

// Contracts returns the registry the service validates against.
func (s *Service) Contracts() *ContractRegistry {
	return s.contracts
}

// Limiter exposes the job limiter for health reporting and shutdown.
func (s *Service) Limiter() *JobLimiter {
	return s.limiter
}

// Config returns the effective configuration.
func (s *Service) Config() ServiceConfig {
	return s.cfg
}

// Artifact is the downloadable result of a job.
type Artifact struct {
	JobID       string
	FileName    string
	ContentType string
	Data        []byte
	Entries     int // files inside the archive; 1 for a combine result
	Rows        int // data rows written
	Message     string
}

// ChunkRequest describes one chunking job.
type ChunkRequest struct {
	File         SourceFile
	RowsPerChunk int // 0 selects the configured default
	Format       OutputFormat
	Validate     bool
	Contract     string // contract key; empty selects the configured default
	ArchiveName  string // base name; empty produces chunked_files.zip
}

// CombineRequest describes one combine job.
type CombineRequest struct {
	Mode       JoinMode
	Files      []SourceFile
	LeftKey    int
	RightKey   int
	Format     OutputFormat
	OutputName string // base name without extension
}

// Chunk decodes one file, splits it into partitions and bundles them into a
// zip archive.
func (s *Service) Chunk(ctx context.Context, req ChunkRequest) (*Artifact, error) {
	jobID := uuid.New().String()
	logger := logging.ForJob(ctx, "chunk", jobID, append(jobFields(ctx), "file", req.File.Name)...)

	rows := req.RowsPerChunk
	if rows == 0 {
		rows = s.cfg.DefaultChunkSize
	}

	if err := s.checkFile(req.File, ErrNoFile); err != nil {
		return nil, err
	}
	if rows < 1 {
		return nil, configErrorf("chunk", ErrInvalidChunkSize, "got %d", rows)
	}
	if !req.Format.valid() {
		return nil, configErrorf("chunk", ErrUnknownFormat, "%s", req.Format)
	}

	var check HeaderPredicate
	if req.Validate {
		key := req.Contract
		if key == "" {
			key = s.cfg.DefaultContract
		}
		c, err := s.contracts.Lookup(key)
		if err != nil {
			return nil, err
		}
		check = c.Predicate()
		logger = logger.With("contract", c.Key)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		logger.Warn("chunk rejected", "error", err)
		return nil, err
	}
	defer s.limiter.Release()

	start := time.Now()
	logger.Info("chunk started", "rows_per_chunk", rows, "format", req.Format.String(), "bytes", len(req.File.Data))

	t, stats, err := req.File.Decode()
	if err != nil {
		logger.Warn("chunk decode failed", "error", err)
		return nil, err
	}
	logDecodeStats(logger, req.File.Name, stats)

	if check != nil {
		if err := check(t.Header); err != nil {
			logger.Warn("chunk header rejected", "error", err)
			return nil, err
		}
	}

	parts, err := PartitionTable(t, rows)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, decodeErrorf("chunk", ErrEmptySource, "%s", req.File.Name)
	}

	data, err := ArchivePartitions(NewZipArchive(), parts, req.Format)
	if err != nil {
		logger.Error("chunk output failed", "error", err)
		return nil, err
	}

	art := &Artifact{
		JobID:       jobID,
		FileName:    archiveFileName(req.ArchiveName),
		ContentType: "application/zip",
		Data:        data,
		Entries:     len(parts),
		Rows:        t.Len(),
		Message:     fmt.Sprintf("Success: %d files chunked and zip downloaded.", len(parts)),
	}

	logger.Info("chunk completed",
		"chunks", art.Entries,
		"rows", art.Rows,
		"archive_bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return art, nil
}

// Combine decodes every source behind the decode barrier, merges them and
// encodes the result as a single file.
func (s *Service) Combine(ctx context.Context, req CombineRequest) (*Artifact, error) {
	jobID := uuid.New().String()
	logger := logging.ForJob(ctx, "combine", jobID, append(jobFields(ctx), "mode", req.Mode.String())...)

	if err := s.validateCombine(req); err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		logger.Warn("combine rejected", "error", err)
		return nil, err
	}
	defer s.limiter.Release()

	start := time.Now()
	logger.Info("combine started", "files", len(req.Files), "format", req.Format.String())

	tables, stats, err := DecodeAll(req.Files, s.cfg.DecodeParallelism)
	if err != nil {
		logger.Warn("combine decode failed", "error", err)
		return nil, err
	}
	for i, st := range stats {
		logDecodeStats(logger, req.Files[i].Name, st)
	}

	spec := JoinSpec{
		Mode:     req.Mode,
		Sources:  tables,
		LeftKey:  req.LeftKey,
		RightKey: req.RightKey,
	}
	out, err := Combine(spec)
	if err != nil {
		logger.Warn("combine failed", "error", err)
		return nil, err
	}

	data, err := Encode(out, req.Format)
	if err != nil {
		logger.Error("combine output failed", "error", err)
		return nil, err
	}

	name := outputBaseName(req.OutputName) + "." + req.Format.Extension()
	art := &Artifact{
		JobID:       jobID,
		FileName:    name,
		ContentType: req.Format.ContentType(),
		Data:        data,
		Entries:     1,
		Rows:        out.Len(),
		Message:     fmt.Sprintf("Success: files combined into %s.", name),
	}

	logger.Info("combine completed",
		"spec", spec.Describe(),
		"rows", art.Rows,
		"columns", out.Width(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return art, nil
}

// validateCombine checks everything that can be checked before decoding.
// Key column ranges are checked by Combine once headers are known.
func (s *Service) validateCombine(req CombineRequest) error {
	switch req.Mode {
	case ModeUnion, ModeLeftJoin, ModeRightJoin:
	default:
		return configErrorf("combine", ErrUnknownMode, "%s", req.Mode)
	}
	if !req.Format.valid() {
		return configErrorf("combine", ErrUnknownFormat, "%s", req.Format)
	}

	lo, hi := SourceLimits(req.Mode)
	if n := len(req.Files); n < lo || n > hi {
		return configErrorf("combine", ErrSourceCount, "%s needs %d to %d files, got %d", req.Mode, lo, hi, n)
	}

	missing := ErrNoFile
	if req.Mode.IsJoin() {
		missing = ErrMissingSource
	}
	for _, f := range req.Files {
		if err := s.checkFile(f, missing); err != nil {
			return err
		}
	}

	if req.Mode.IsJoin() {
		if req.LeftKey == NoKey {
			return configErrorf("combine", ErrMissingKeyColumn, "left key")
		}
		if req.RightKey == NoKey {
			return configErrorf("combine", ErrMissingKeyColumn, "right key")
		}
	}
	return nil
}

// checkFile rejects a missing or oversized file. missing is the sentinel
// used when the slot is empty.
func (s *Service) checkFile(f SourceFile, missing error) error {
	if f.Name == "" && len(f.Data) == 0 {
		return configError("check file", missing)
	}
	if int64(len(f.Data)) > s.cfg.MaxFileSize {
		return configErrorf("check file", ErrFileTooLarge, "%s is %s, limit %s",
			f.Name, humanize.IBytes(uint64(len(f.Data))), humanize.IBytes(uint64(s.cfg.MaxFileSize)))
	}
	return nil
}

// ListSheets returns the sheet names of a workbook.
func (s *Service) ListSheets(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, configError("list sheets", ErrNoFile)
	}
	return ListSheets(raw)
}

// Columns returns the header columns of f without decoding its data rows.
// A header-only file is accepted.
func (s *Service) Columns(f SourceFile) ([]string, error) {
	if err := s.checkFile(f, ErrNoFile); err != nil {
		return nil, err
	}
	return f.Header()
}

// Inspection summarises a source for the column and sheet selectors.
type Inspection struct {
	FileName string   `json:"file_name"`
	Kind     string   `json:"kind"`
	Sheets   []string `json:"sheets,omitempty"`
	Sheet    string   `json:"sheet,omitempty"`
	Columns  []string `json:"columns"`
	Rows     int      `json:"rows"`

	Preview *PreviewResponse `json:"preview,omitempty"`
}

// Inspect decodes f and reports its header, row count, a preview and, for
// workbooks, the available sheets.
func (s *Service) Inspect(f SourceFile) (*Inspection, error) {
	if err := s.checkFile(f, ErrNoFile); err != nil {
		return nil, err
	}

	in := &Inspection{FileName: f.Name, Kind: f.Kind().String()}
	if f.Kind() == SourceWorkbook {
		sheets, err := ListSheets(f.Data)
		if err != nil {
			return nil, err
		}
		in.Sheets = sheets
	}

	t, stats, err := f.Decode()
	if err != nil {
		return nil, err
	}
	in.Sheet = stats.Sheet
	in.Columns = cloneStrings(t.Header)
	in.Rows = t.Len()
	in.Preview = BuildPreview(t)
	return in, nil
}

func logDecodeStats(logger *slog.Logger, name string, st DecodeStats) {
	logger.Debug("source decoded",
		"source", name,
		"lines", st.Lines,
		"blank", st.Blank,
		"padded", st.Padded,
		"sheet", st.Sheet,
	)
	if st.Truncated > 0 {
		logger.Warn("rows longer than header were truncated",
			"source", name,
			"rows", st.Truncated,
		)
	}
}

func archiveFileName(base string) string {
	base = cleanBaseName(base)
	if base == "" {
		return DefaultArchiveName
	}
	return base + "_chunks.zip"
}

func outputBaseName(name string) string {
	if base := cleanBaseName(name); base != "" {
		return base
	}
	return DefaultOutputName
}

// cleanBaseName strips directories and a trailing extension from a
// user-supplied file name.
func cleanBaseName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = filepath.Base(filepath.ToSlash(name))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
