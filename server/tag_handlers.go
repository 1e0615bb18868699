package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type tagRequest struct {
	TagName string `json:"tag_name"`
}

func (s *Server) createTag(c *gin.Context) {
	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.TagName)
	if name == "" {
		badRequest(c, "tag_name required")
		return
	}
	t, err := s.Tags.GetOrCreate(c.Request.Context(), userID(c), name)
	if err != nil {
		s.internalError(c, "Failed to create tag", err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *Server) listTags(c *gin.Context) {
	tags, err := s.Tags.List(c.Request.Context(), userID(c))
	if err != nil {
		s.internalError(c, "Failed to list tags", err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (s *Server) listNoteTags(c *gin.Context) {
	n, ok := s.ownedNote(c)
	if !ok {
		return
	}
	tags, err := s.Tags.ListForNote(c.Request.Context(), n.ID)
	if err != nil {
		s.internalError(c, "Failed to list note tags", err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

type noteTagRequest struct {
	TagID uint `json:"tag_id"`
}

func (s *Server) addNoteTag(c *gin.Context) {
	var req noteTagRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TagID == 0 {
		badRequest(c, "tag_id required")
		return
	}
	n, ok := s.ownedNote(c)
	if !ok {
		return
	}
	if _, err := s.Tags.Get(c.Request.Context(), userID(c), req.TagID); err != nil {
		s.storeError(c, err, "Tag not found or unauthorized", "Failed to add tag")
		return
	}
	if err := s.Tags.Attach(c.Request.Context(), n.ID, req.TagID); err != nil {
		s.internalError(c, "Failed to add tag", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Tag added to note"})
}

func (s *Server) removeNoteTag(c *gin.Context) {
	n, ok := s.ownedNote(c)
	if !ok {
		return
	}
	tagID, ok := pathID(c, "tagId")
	if !ok {
		return
	}
	if err := s.Tags.Detach(c.Request.Context(), n.ID, tagID); err != nil {
		s.storeError(c, err, "Tag not associated with note", "Failed to remove tag")
		return
	}
	c.Status(http.StatusNoContent)
}
