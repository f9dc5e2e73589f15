package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/equiptracker/internal/common"
	"github.com/dmitrijs2005/equiptracker/internal/server/models"
	"github.com/dmitrijs2005/equiptracker/internal/timex"
)

// maxBodyBytes caps create payloads.
const maxBodyBytes = 1 << 20

type listResponse struct {
	Entries    []models.Entry `json:"entries"`
	ResetHours int            `json:"resetHours"`
	LastReset  string         `json:"lastReset"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *HTTPServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *HTTPServer) getCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog)
}

func (s *HTTPServer) listEntries(c *gin.Context) {
	listing, err := s.entries.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse{
		Entries:    listing.Entries,
		ResetHours: listing.ResetHours,
		LastReset:  timex.FormatInstant(listing.LastReset),
	})
}

func (s *HTTPServer) createEntry(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: errInvalidPayload.Error()})
		return
	}
	in, err := decodeNewEntry(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	entry, err := s.entries.Create(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.EntryCreated()
	c.JSON(http.StatusCreated, entry)
}

func (s *HTTPServer) deleteEntry(c *gin.Context) {
	id := c.Param("id")
	if err := s.entries.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.EntryDeleted()
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
}

func (s *HTTPServer) exportEntries(c *gin.Context) {
	rep, err := s.export.Export(c.Request.Context(), c.Query("start"), c.Query("end"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.ExportRendered(rep.Rows)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, rep.Filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", rep.Data)
}

// fail maps service errors to status codes. Unexpected errors are logged
// and reported without detail.
func (s *HTTPServer) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "Entry not found"})
	case errors.Is(err, common.ErrInvalidStart):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid start datetime"})
	case errors.Is(err, common.ErrInvalidEnd):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid end datetime"})
	case errors.Is(err, common.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Start datetime must be before end datetime"})
	default:
		s.logger.Error(c.Request.Context(), "request failed", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: common.ErrorInternal.Error()})
	}
}
