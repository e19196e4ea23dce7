package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"docintake/internal/common"
	"docintake/internal/pipeline"
	"docintake/internal/repository"
)

// uploadDocument handles POST /api/v1/documents (multipart, field "file").
func (s *Server) uploadDocument(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "invalid_input", Message: "multipart field 'file' is required"})
		return
	}
	if fh.Size > s.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Code: "file_too_large", Message: fmt.Sprintf("upload exceeds %d bytes", s.maxUploadBytes)})
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	doc, err := s.processor.ProcessDocument(c.Request.Context(), pipeline.Upload{
		Reader:      f,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// listDocuments handles GET /api/v1/documents?limit=&offset=&from=&to=.
func (s *Server) listDocuments(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "invalid_input", Message: "limit must be an integer"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "invalid_input", Message: "offset must be an integer"})
		return
	}

	from, err := parseDateQuery(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "invalid_input", Message: "from must be YYYY-MM-DD"})
		return
	}
	to, err := parseDateQuery(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "invalid_input", Message: "to must be YYYY-MM-DD"})
		return
	}

	docs, err := s.docs.List(c.Request.Context(), from, to, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs, "limit": limit, "offset": offset})
}

// getDocument handles GET /api/v1/documents/:id.
func (s *Server) getDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "invalid_input", Message: "id must be a UUID"})
		return
	}
	doc, err := s.docs.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// updateDocument handles PATCH /api/v1/documents/:id. A field present with a
// JSON null clears the column; an absent field is left untouched.
func (s *Server) updateDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "invalid_input", Message: "id must be a UUID"})
		return
	}

	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "invalid_input", Message: "invalid request body"})
		return
	}

	req, err := buildUpdateRequest(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "invalid_input", Message: err.Error()})
		return
	}

	doc, err := s.docs.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// deleteDocument handles DELETE /api/v1/documents/:id. The record and the
// stored file are both removed.
func (s *Server) deleteDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "invalid_input", Message: "id must be a UUID"})
		return
	}
	filePath, err := s.docs.Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := s.store.Remove(filePath); err != nil {
		s.logger.Warn("server.delete.file_remove_failed", "path", filePath, "error", err)
	}
	c.Status(http.StatusNoContent)
}

// exportDocuments handles GET /api/v1/documents/export?from=&to=.
func (s *Server) exportDocuments(c *gin.Context) {
	from, err := parseDateQuery(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "invalid_input", Message: "from must be YYYY-MM-DD"})
		return
	}
	to, err := parseDateQuery(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: "invalid_input", Message: "to must be YYYY-MM-DD"})
		return
	}

	data, err := s.exporter.ExportDocumentsXLSX(c.Request.Context(), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="documents.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func parseDateQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func buildUpdateRequest(body map[string]json.RawMessage) (*repository.UpdateDocumentRequest, error) {
	req := &repository.UpdateDocumentRequest{}

	setString := func(key string, dst **string, clear *bool) error {
		raw, ok := body[key]
		if !ok {
			return nil
		}
		if string(raw) == "null" {
			*clear = true
			return nil
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("%w: %s must be a string", common.ErrInvalidInput, key)
		}
		*dst = &v
		return nil
	}

	if err := setString("document_number", &req.DocumentNumber, &req.ClearDocumentNumber); err != nil {
		return nil, err
	}
	if err := setString("sender", &req.Sender, &req.ClearSender); err != nil {
		return nil, err
	}
	if err := setString("purpose", &req.Purpose, &req.ClearPurpose); err != nil {
		return nil, err
	}

	if raw, ok := body["document_date"]; ok {
		if string(raw) == "null" {
			req.ClearDocumentDate = true
		} else {
			var v string
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, fmt.Errorf("%w: document_date must be a string", common.ErrInvalidInput)
			}
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				if t, err = time.Parse(time.RFC3339, v); err != nil {
					return nil, fmt.Errorf("%w: document_date must be YYYY-MM-DD or RFC3339", common.ErrInvalidInput)
				}
			}
			req.DocumentDate = &t
		}
	}

	if raw, ok := body["amount"]; ok {
		if string(raw) == "null" {
			req.ClearAmount = true
		} else {
			var d decimal.Decimal
			if err := json.Unmarshal(raw, &d); err != nil {
				return nil, fmt.Errorf("%w: amount must be a decimal", common.ErrInvalidInput)
			}
			req.Amount = &d
		}
	}

	return req, nil
}
