package server

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"notesapp/models"
	"notesapp/pkg/media"
)

const msgMediaNotFound = "Media not found or unauthorized"

type mediaRequest struct {
	FilePath string `json:"file_path"`
	Filename string `json:"filename"`
	Base64   string `json:"base64"`
	FileType string `json:"file_type"`
}

// limitBody caps upload request bodies at MaxUploadBytes.
func (s *Server) limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.MaxUploadBytes)
	c.Next()
}

func (s *Server) addMedia(c *gin.Context) {
	var (
		upload   *media.Upload
		filePath string
		fileType string
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("file")
		if err != nil {
			s.uploadBodyError(c, err, "multipart field \"file\" required")
			return
		}
		f, err := fh.Open()
		if err != nil {
			s.internalError(c, "Failed to add media", err)
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			s.uploadBodyError(c, err, "could not read upload")
			return
		}
		fileType = c.PostForm("file_type")
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fh.Filename)), ".")
		if ext == "" {
			ext = media.ExtFromMime(fh.Header.Get("Content-Type"))
		}
		upload = &media.Upload{Data: data, Ext: ext, FileType: fileType}
	} else {
		var req mediaRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.uploadBodyError(c, err, "invalid request body")
			return
		}
		if req.FilePath == "" && (req.Filename == "" || req.Base64 == "") {
			badRequest(c, "Provide file_path OR filename+base64")
			return
		}
		fileType = req.FileType
		if req.Base64 != "" {
			p, err := media.DecodePayload(req.Base64, req.Filename)
			if err != nil {
				badRequest(c, err.Error())
				return
			}
			upload = &media.Upload{Data: p.Data, Ext: p.Ext, FileType: fileType}
		} else {
			// stored objects are only referenced through rows created by Save
			if s.Attacher.Storage().Manages(req.FilePath) {
				badRequest(c, "file_path must be an external URL")
				return
			}
			filePath = req.FilePath
		}
	}

	n, ok := s.ownedNote(c)
	if !ok {
		return
	}
	m := &models.Media{NoteID: n.ID, FilePath: filePath}
	if fileType != "" {
		m.FileType = &fileType
	}
	if upload != nil {
		stored, err := s.Attacher.Save(c.Request.Context(), *upload)
		if err != nil {
			s.internalError(c, "Failed to add media", err)
			return
		}
		m.FilePath = stored.Path
		m.FileType = stored.FileType
		m.ExtractedText = stored.ExtractedText
	}
	if err := s.Media.Create(c.Request.Context(), m); err != nil {
		if upload != nil {
			_ = s.Attacher.Storage().Delete(c.Request.Context(), m.FilePath)
		}
		s.internalError(c, "Failed to add media", err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// uploadBodyError answers 413 when the body hit MaxUploadBytes and 400 otherwise.
func (s *Server) uploadBodyError(c *gin.Context, err error, msg string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
		return
	}
	badRequest(c, msg)
}

// mediaWithContent is a media row with its content inlined as a data URL.
type mediaWithContent struct {
	models.Media
	Base64 *string `json:"base64"`
	Error  string  `json:"_error,omitempty"`
}

func (s *Server) listMedia(c *gin.Context) {
	n, ok := s.ownedNote(c)
	if !ok {
		return
	}
	rows, err := s.Media.ListByNote(c.Request.Context(), n.ID)
	if err != nil {
		s.internalError(c, "Failed to list media", err)
		return
	}
	if c.Query("asBase64") != "true" {
		c.JSON(http.StatusOK, rows)
		return
	}

	storage := s.Attacher.Storage()
	out := make([]mediaWithContent, 0, len(rows))
	for _, r := range rows {
		item := mediaWithContent{Media: r}
		// external URLs are returned as they are
		if storage.Manages(r.FilePath) {
			data, err := s.readStored(c, r.FilePath)
			if err != nil {
				if !errors.Is(err, media.ErrNotFound) {
					s.logger(c).Warn("read stored media", zap.Uint("media_id", r.ID), zap.Error(err))
				}
				item.Error = "file not found"
			} else {
				encoded := media.DataURL(media.MimeFromPath(r.FilePath), data)
				item.Base64 = &encoded
			}
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) readStored(c *gin.Context, storedPath string) ([]byte, error) {
	rc, err := s.Attacher.Storage().Open(c.Request.Context(), storedPath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (s *Server) ownedMedia(c *gin.Context) (*models.Media, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}
	m, err := s.Media.GetOwned(c.Request.Context(), userID(c), id)
	if err != nil {
		s.storeError(c, err, msgMediaNotFound, "Failed to fetch media")
		return nil, false
	}
	return m, true
}

func (s *Server) mediaContent(c *gin.Context) {
	m, ok := s.ownedMedia(c)
	if !ok {
		return
	}
	storage := s.Attacher.Storage()
	if !storage.Manages(m.FilePath) {
		notFound(c, "media is not stored by this server")
		return
	}
	rc, err := storage.Open(c.Request.Context(), m.FilePath)
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			notFound(c, "file not found")
			return
		}
		s.internalError(c, "Failed to read media", err)
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, -1, media.MimeFromPath(m.FilePath), rc, nil)
}

func (s *Server) deleteMedia(c *gin.Context) {
	m, ok := s.ownedMedia(c)
	if !ok {
		return
	}
	if storage := s.Attacher.Storage(); storage.Manages(m.FilePath) {
		if err := storage.Delete(c.Request.Context(), m.FilePath); err != nil && !errors.Is(err, media.ErrNotFound) {
			s.logger(c).Warn("delete stored media", zap.Uint("media_id", m.ID), zap.Error(err))
		}
	}
	if err := s.Media.Delete(c.Request.Context(), m.ID); err != nil {
		s.storeError(c, err, msgMediaNotFound, "Failed to delete media")
		return
	}
	c.Status(http.StatusNoContent)
}
