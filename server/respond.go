package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notesapp/pkg/auth"
	"notesapp/pkg/logging"
	"notesapp/repository"
)

func (s *Server) logger(c *gin.Context) *zap.Logger {
	return logging.WithTrace(c.Request.Context(), s.Log)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{"error": msg})
}

// internalError logs err and answers 500 with a generic message plus the
// error text as details.
func (s *Server) internalError(c *gin.Context, msg string, err error) {
	s.logger(c).Error(msg, zap.Error(err), zap.String("path", c.FullPath()))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg, "details": err.Error()})
}

// storeError answers 404 for ErrNotFound and 500 for anything else.
func (s *Server) storeError(c *gin.Context, err error, notFoundMsg, failMsg string) {
	if errors.Is(err, repository.ErrNotFound) {
		notFound(c, notFoundMsg)
		return
	}
	s.internalError(c, failMsg, err)
}

// pathID parses a positive numeric path parameter. On failure it has already
// answered 400.
func pathID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}

// userID is the authenticated caller. Routes using it sit behind the auth
// middleware so the identity is always present.
func userID(c *gin.Context) uint {
	id, _ := auth.IdentityFrom(c)
	return id.UserID
}

// optionalID treats a missing or zero id as no id.
func optionalID(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}
