package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"notesapp/pkg/auth"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	u, err := s.Auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrValidation):
		badRequest(c, "username, email and password are required")
		return
	case errors.Is(err, auth.ErrConflict):
		badRequest(c, "Username or email already exists.")
		return
	case err != nil:
		s.internalError(c, "Failed to register user.", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": u})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	res, err := s.Auth.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrValidation):
		badRequest(c, "email and password are required")
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials."})
		return
	case err != nil:
		s.internalError(c, "Login failed.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Login successful",
		"token":      res.Token,
		"user_id":    res.UserID,
		"expires_at": res.ExpiresAt.UTC(),
	})
}

func (s *Server) me(c *gin.Context) {
	id, ok := auth.IdentityFrom(c)
	if !ok || id.UserID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, id)
}

func (s *Server) logout(c *gin.Context) {
	err := s.Auth.Logout(auth.TokenFrom(c))
	switch {
	case errors.Is(err, auth.ErrValidation):
		badRequest(c, "Token required to logout")
		return
	case err != nil:
		s.internalError(c, "Logout failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
