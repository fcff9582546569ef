package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	visitdomain "github.com/smallbiznis/tourbill/internal/visit/domain"
)

func (s *Server) RegisterVisit(c *gin.Context) {
	var req visitdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}

	resp, err := s.visitSvc.RegisterVisit(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListVisits(c *gin.Context) {
	resp, err := s.visitSvc.ListVisits(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetVisitByID(c *gin.Context) {
	resp, err := s.visitSvc.GetVisit(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateVisit(c *gin.Context) {
	var req visitdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, bindingError(err))
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.visitSvc.UpdateVisit(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteVisit(c *gin.Context) {
	if err := s.visitSvc.DeleteVisit(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
