// Package server exposes the notes API over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"notesapp/models"
	"notesapp/pkg/auth"
	"notesapp/pkg/logging"
	"notesapp/pkg/media"
	"notesapp/pkg/metrics"
	"notesapp/pkg/tracing"
	"notesapp/repository"
)

// NoteStore persists notes scoped by owner.
type NoteStore interface {
	Create(ctx context.Context, n *models.Note) error
	List(ctx context.Context, userID uint, f repository.NoteFilter) ([]models.NoteListItem, error)
	Get(ctx context.Context, userID, noteID uint) (*models.Note, error)
	Update(ctx context.Context, userID, noteID uint, fields repository.NoteFields) (*models.Note, error)
	Delete(ctx context.Context, userID, noteID uint) error
}

// FolderStore persists folders scoped by owner.
type FolderStore interface {
	Create(ctx context.Context, f *models.Folder) error
	List(ctx context.Context, userID uint) ([]models.Folder, error)
	Get(ctx context.Context, userID, folderID uint) (*models.Folder, error)
	Update(ctx context.Context, userID, folderID uint, name string, parentID *uint) (*models.Folder, error)
	Delete(ctx context.Context, userID, folderID uint) error
}

// TagStore persists per-user tags and their links to notes.
type TagStore interface {
	GetOrCreate(ctx context.Context, userID uint, name string) (*models.Tag, error)
	List(ctx context.Context, userID uint) ([]models.Tag, error)
	Get(ctx context.Context, userID, tagID uint) (*models.Tag, error)
	ListForNote(ctx context.Context, noteID uint) ([]models.Tag, error)
	Attach(ctx context.Context, noteID, tagID uint) error
	Detach(ctx context.Context, noteID, tagID uint) error
}

// MediaStore persists attachment rows. Ownership is checked through the note.
type MediaStore interface {
	Create(ctx context.Context, m *models.Media) error
	ListByNote(ctx context.Context, noteID uint) ([]models.Media, error)
	GetOwned(ctx context.Context, userID, mediaID uint) (*models.Media, error)
	Delete(ctx context.Context, mediaID uint) error
}

// HealthChecker pings the database for /api/db-check and /healthz.
type HealthChecker interface {
	Now(ctx context.Context) (time.Time, error)
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the HTTP layer. Metrics is optional.
type Deps struct {
	Auth        *auth.Service
	Tokens      *auth.Tokens
	Revocations auth.RevocationChecker
	Notes       NoteStore
	Folders     FolderStore
	Tags        TagStore
	Media       MediaStore
	Attacher    *media.Attacher
	Health      HealthChecker
	Metrics     *metrics.Metrics
	Log         *zap.Logger

	MaxUploadBytes int64
}

// Server holds the HTTP handlers.
type Server struct {
	Deps
}

// New fills in defaults for Log and MaxUploadBytes.
func New(d Deps) *Server {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 10 << 20
	}
	return &Server{Deps: d}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(logging.Gin(s.Log), logging.Recovery(s.Log))

	var mwOpts []auth.MiddlewareOption
	if s.Metrics != nil {
		r.Use(s.Metrics.Gin())
		r.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
		mwOpts = append(mwOpts, auth.OnReject(func(reason auth.Reason) {
			s.Metrics.AuthRejected(string(reason))
		}))
	}
	requireAuth := auth.Middleware(s.Tokens, s.Revocations, mwOpts...)

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Note-Taking Backend is running!")
	})
	r.GET("/healthz", s.healthz)

	api := r.Group("/api")
	api.POST("/signup", s.signup)
	api.POST("/login", s.login)
	api.GET("/db-check", s.dbCheck)

	authed := api.Group("")
	authed.Use(requireAuth)
	authed.GET("/me", s.me)
	authed.POST("/logout", s.logout)

	authed.POST("/notes", s.createNote)
	authed.GET("/notes", s.listNotes)
	authed.GET("/notes/:id", s.getNote)
	authed.PUT("/notes/:id", s.updateNote)
	authed.DELETE("/notes/:id", s.deleteNote)

	authed.POST("/folders", s.createFolder)
	authed.GET("/folders", s.listFolders)
	authed.GET("/folders/:id", s.getFolder)
	authed.PUT("/folders/:id", s.updateFolder)
	authed.DELETE("/folders/:id", s.deleteFolder)

	authed.POST("/tags", s.createTag)
	authed.GET("/tags", s.listTags)
	authed.GET("/notes/:id/tags", s.listNoteTags)
	authed.POST("/notes/:id/tags", s.addNoteTag)
	authed.DELETE("/notes/:id/tags/:tagId", s.removeNoteTag)

	authed.POST("/notes/:id/media", s.limitBody, s.addMedia)
	authed.GET("/notes/:id/media", s.listMedia)
	authed.GET("/media/:id/content", s.mediaContent)
	authed.DELETE("/media/:id", s.deleteMedia)

	return r
}

// HandlerConfig controls the outer wrapping of the router.
type HandlerConfig struct {
	AllowedOrigins []string
	Tracing        bool
}

// Handler wraps Router with CORS and, when enabled, request tracing.
func (s *Server) Handler(cfg HandlerConfig) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	var h http.Handler = cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(s.Router())
	if cfg.Tracing {
		h = tracing.Handler(h, "notesapp")
	}
	return h
}
