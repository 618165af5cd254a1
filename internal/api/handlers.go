package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/core"
	"github.com/rasi23/pingpeek-phishguard/internal/service"
	"github.com/rasi23/pingpeek-phishguard/internal/stats"
)

const (
	defaultSeriesDays = 7
	maxSeriesDays     = 90
)

type analyzeRequest struct {
	RawEmail string `json:"raw_email"`
}

// fail writes a JSON error with the status matching err
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	default:
		s.logger.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) listEmails(c *gin.Context) {
	f := service.Filter{
		Query: c.Query("q"),
		Sort:  c.DefaultQuery("sort", service.SortDate),
	}
	if status := c.Query("status"); status != "" && status != "all" {
		v := core.Verdict(status)
		if !v.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status: " + status})
			return
		}
		f.Status = v
	}
	if f.Sort != service.SortDate && f.Sort != service.SortSeverity {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown sort: " + f.Sort})
		return
	}

	emails, err := s.svc.ListEmails(c.Request.Context(), f)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, emails)
}

func (s *Server) getEmail(c *gin.Context) {
	email, err := s.svc.GetEmail(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, email)
}

func (s *Server) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	report, err := s.svc.Analyze(c.Request.Context(), req.RawEmail)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) quarantine(c *gin.Context) {
	email, err := s.svc.Quarantine(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "quarantined",
		"email":  email,
	})
}

func (s *Server) timeSeries(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(defaultSeriesDays)))
	if err != nil || days < 1 || days > maxSeriesDays {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 90"})
		return
	}
	emails, ok := s.allEmails(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, stats.TimeSeries(emails, days, s.now()))
}

func (s *Server) attackPatterns(c *gin.Context) {
	if emails, ok := s.allEmails(c); ok {
		c.JSON(http.StatusOK, stats.AttackPatterns(emails))
	}
}

func (s *Server) domainAnalysis(c *gin.Context) {
	if emails, ok := s.allEmails(c); ok {
		c.JSON(http.StatusOK, stats.DomainAnalysis(emails))
	}
}

func (s *Server) summary(c *gin.Context) {
	if emails, ok := s.allEmails(c); ok {
		c.JSON(http.StatusOK, stats.Summarize(emails))
	}
}

func (s *Server) allEmails(c *gin.Context) ([]core.Email, bool) {
	emails, err := s.svc.ListEmails(c.Request.Context(), service.Filter{})
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return emails, true
}
