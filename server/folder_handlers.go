package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"notesapp/models"
	"notesapp/repository"
)

// maxFolderDepth bounds the parent walk in wouldCycle.
const maxFolderDepth = 64

type folderRequest struct {
	FolderName     string `json:"folder_name"`
	ParentFolderID *uint  `json:"parent_folder_id"`
}

func (s *Server) createFolder(c *gin.Context) {
	var req folderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.FolderName)
	if name == "" {
		badRequest(c, "folder_name required")
		return
	}
	parentID := optionalID(req.ParentFolderID)
	if parentID != nil {
		if _, err := s.Folders.Get(c.Request.Context(), userID(c), *parentID); err != nil {
			s.storeError(c, err, "Parent folder not found or unauthorized", "Failed to create folder")
			return
		}
	}
	f := &models.Folder{UserID: userID(c), FolderName: name, ParentFolderID: parentID}
	if err := s.Folders.Create(c.Request.Context(), f); err != nil {
		s.internalError(c, "Failed to create folder", err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (s *Server) listFolders(c *gin.Context) {
	folders, err := s.Folders.List(c.Request.Context(), userID(c))
	if err != nil {
		s.internalError(c, "Failed to list folders", err)
		return
	}
	c.JSON(http.StatusOK, folders)
}

func (s *Server) getFolder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	f, err := s.Folders.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		s.storeError(c, err, "Folder not found", "Failed to get folder")
		return
	}
	c.JSON(http.StatusOK, f)
}

func (s *Server) updateFolder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req folderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.FolderName)
	if name == "" {
		badRequest(c, "folder_name required")
		return
	}
	parentID := optionalID(req.ParentFolderID)
	if parentID != nil {
		if *parentID == id {
			badRequest(c, "a folder cannot be its own parent")
			return
		}
		cycle, err := s.wouldCycle(c, id, *parentID)
		if err != nil {
			s.storeError(c, err, "Parent folder not found or unauthorized", "Failed to update folder")
			return
		}
		if cycle {
			badRequest(c, "a folder cannot be moved below one of its descendants")
			return
		}
	}
	f, err := s.Folders.Update(c.Request.Context(), userID(c), id, name, parentID)
	if err != nil {
		s.storeError(c, err, msgFolderNotFound, "Failed to update folder")
		return
	}
	c.JSON(http.StatusOK, f)
}

// wouldCycle walks up from parentID and reports whether folderID is one of
// its ancestors. It returns ErrNotFound when parentID is not the caller's.
func (s *Server) wouldCycle(c *gin.Context, folderID, parentID uint) (bool, error) {
	cur := &parentID
	for depth := 0; cur != nil && depth < maxFolderDepth; depth++ {
		if *cur == folderID {
			return true, nil
		}
		f, err := s.Folders.Get(c.Request.Context(), userID(c), *cur)
		if err != nil {
			if depth > 0 && errors.Is(err, repository.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		cur = f.ParentFolderID
	}
	return false, nil
}

func (s *Server) deleteFolder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := s.Folders.Delete(c.Request.Context(), userID(c), id); err != nil {
		s.storeError(c, err, msgFolderNotFound, "Failed to delete folder")
		return
	}
	c.Status(http.StatusNoContent)
}
