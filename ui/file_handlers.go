package ui

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"sheetcharts/adapters/ingest"
	"sheetcharts/domain/dataset"
	"sheetcharts/internal/errors"
	"sheetcharts/ui/middleware"

	"github.com/gin-gonic/gin"
)

// handleUpload accepts a multipart "file" field and stores it as a dataset
func (s *Server) handleUpload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			respondError(c, errors.ValidationError(fmt.Sprintf("file exceeds the %d MB upload limit", s.server.MaxUploadMB)))
			return
		}
		respondError(c, errors.MissingParameter("file"))
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	supported := false
	for _, allowed := range ingest.Supported() {
		if ext == allowed {
			supported = true
			break
		}
	}
	if !supported {
		respondError(c, errors.UnsupportedFormat(fmt.Sprintf("%q; upload one of %s", ext, strings.Join(ingest.Supported(), ", "))))
		return
	}

	f, err := header.Open()
	if err != nil {
		respondError(c, errors.Wrap(err, "failed to open uploaded file"))
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		respondError(c, errors.Wrap(err, "failed to read uploaded file"))
		return
	}

	result, err := s.datasets.Upload(c.Request.Context(), &dataset.Upload{
		UserID:   middleware.CurrentUser(c),
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Content:  content,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	log.Printf("[API] Upload %s -> dataset %s (duplicate=%t)", header.Filename, result.Dataset.ID, result.Duplicate)
	c.JSON(status, gin.H{
		"success":   true,
		"file":      fileResponse(result.Dataset),
		"duplicate": result.Duplicate,
	})
}

func (s *Server) handleListFiles(c *gin.Context) {
	limit, offset, err := pagination(c)
	if err != nil {
		respondError(c, err)
		return
	}

	files, total, err := s.datasets.List(c.Request.Context(), middleware.CurrentUser(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"files":  files,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) handleGetFile(c *gin.Context) {
	id, err := pathID(c, "fileId", "file")
	if err != nil {
		respondError(c, err)
		return
	}
	ds, err := s.datasets.Get(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"file": fileResponse(ds)})
}

func (s *Server) handleColumns(c *gin.Context) {
	id, err := pathID(c, "fileId", "file")
	if err != nil {
		respondError(c, err)
		return
	}
	columns, err := s.datasets.Columns(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"columns": columns})
}

func (s *Server) handlePreview(c *gin.Context) {
	id, err := pathID(c, "fileId", "file")
	if err != nil {
		respondError(c, err)
		return
	}
	rows, err := queryInt(c, "rows", s.limits.PreviewRows)
	if err != nil {
		respondError(c, err)
		return
	}
	if rows < 1 || rows > s.limits.MaxRowLimit {
		respondError(c, errors.InvalidInput(fmt.Sprintf("rows must be between 1 and %d", s.limits.MaxRowLimit)))
		return
	}

	table, err := s.datasets.Preview(c.Request.Context(), middleware.CurrentUser(c), id, rows)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"headers":  table.Headers,
		"rows":     table.Rows,
		"rowCount": table.RowCount(),
	})
}

func (s *Server) handleSummary(c *gin.Context) {
	id, err := pathID(c, "fileId", "file")
	if err != nil {
		respondError(c, err)
		return
	}
	column := c.Param("column")
	summary, err := s.datasets.Summary(c.Request.Context(), middleware.CurrentUser(c), id, column)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"column": column, "summary": summary})
}

func (s *Server) handleDeleteFile(c *gin.Context) {
	id, err := pathID(c, "fileId", "file")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := s.datasets.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// fileResponse is the dataset without its row content
func fileResponse(ds *dataset.Dataset) gin.H {
	return gin.H{
		"id":                ds.ID,
		"original_filename": ds.OriginalFilename,
		"file_size":         ds.FileSize,
		"mime_type":         ds.MimeType,
		"sheet_name":        ds.SheetName,
		"record_count":      ds.RecordCount,
		"field_count":       ds.FieldCount,
		"headers":           ds.Headers,
		"columns":           ds.Columns,
		"created_at":        ds.CreatedAt,
	}
}
