package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"notesapp/models"
	"notesapp/repository"
)

const (
	msgNoteNotFound   = "Note not found or unauthorized"
	msgFolderNotFound = "Folder not found or unauthorized"
)

type noteRequest struct {
	NoteTitle   string `json:"note_title"`
	NoteContent string `json:"note_content"`
	FolderID    *uint  `json:"folder_id"`
}

// ownedFolder answers 404 and returns false when folderID is set but not
// owned by the caller.
func (s *Server) ownedFolder(c *gin.Context, folderID *uint) bool {
	if folderID == nil {
		return true
	}
	if _, err := s.Folders.Get(c.Request.Context(), userID(c), *folderID); err != nil {
		s.storeError(c, err, msgFolderNotFound, "Failed to check folder")
		return false
	}
	return true
}

func (s *Server) createNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	folderID := optionalID(req.FolderID)
	if !s.ownedFolder(c, folderID) {
		return
	}
	n := &models.Note{
		UserID:      userID(c),
		FolderID:    folderID,
		NoteTitle:   req.NoteTitle,
		NoteContent: req.NoteContent,
	}
	if err := s.Notes.Create(c.Request.Context(), n); err != nil {
		s.internalError(c, "Failed to create note", err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (s *Server) listNotes(c *gin.Context) {
	var f repository.NoteFilter
	if raw := c.Query("folder_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			badRequest(c, "invalid folder_id")
			return
		}
		id := uint(v)
		f.FolderID = &id
	}
	f.Query = c.Query("q")
	notes, err := s.Notes.List(c.Request.Context(), userID(c), f)
	if err != nil {
		s.internalError(c, "Failed to fetch notes", err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

func (s *Server) getNote(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	n, err := s.Notes.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		s.storeError(c, err, msgNoteNotFound, "Failed to fetch note")
		return
	}
	c.JSON(http.StatusOK, n)
}

func (s *Server) updateNote(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	folderID := optionalID(req.FolderID)
	if !s.ownedFolder(c, folderID) {
		return
	}
	n, err := s.Notes.Update(c.Request.Context(), userID(c), id, repository.NoteFields{
		Title:    req.NoteTitle,
		Content:  req.NoteContent,
		FolderID: folderID,
	})
	if err != nil {
		s.storeError(c, err, msgNoteNotFound, "Failed to update note")
		return
	}
	c.JSON(http.StatusOK, n)
}

func (s *Server) deleteNote(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.Notes.Delete(c.Request.Context(), userID(c), id); err != nil {
		s.storeError(c, err, msgNoteNotFound, "Failed to delete note")
		return
	}
	c.Status(http.StatusNoContent)
}

// ownedNote loads the caller's note or answers 404/500.
func (s *Server) ownedNote(c *gin.Context) (*models.Note, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}
	n, err := s.Notes.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		s.storeError(c, err, msgNoteNotFound, "Failed to fetch note")
		return nil, false
	}
	return n, true
}
