package server

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"notesapp/models"
	"notesapp/repository"
)

// memDB is an in-memory stand-in for the Postgres repositories with the same
// ownership rules: rows of other users are reported as ErrNotFound.
type memDB struct {
	mu       sync.Mutex
	seq      uint
	tick     time.Time
	users    map[uint]*models.User
	notes    map[uint]*models.Note
	folders  map[uint]*models.Folder
	tags     map[uint]*models.Tag
	noteTags map[[2]uint]bool
	media    map[uint]*models.Media
	failNext error
}

func newMemDB() *memDB {
	return &memDB{
		tick:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		users:    map[uint]*models.User{},
		notes:    map[uint]*models.Note{},
		folders:  map[uint]*models.Folder{},
		tags:     map[uint]*models.Tag{},
		noteTags: map[[2]uint]bool{},
		media:    map[uint]*models.Media{},
	}
}

func (db *memDB) next() (uint, time.Time) {
	db.seq++
	db.tick = db.tick.Add(time.Second)
	return db.seq, db.tick
}

func (db *memDB) now() time.Time {
	db.tick = db.tick.Add(time.Second)
	return db.tick
}

// fail returns and clears the injected failure.
func (db *memDB) fail() error {
	err := db.failNext
	db.failNext = nil
	return err
}

type fakeUsers struct{ db *memDB }

func (f fakeUsers) Create(_ context.Context, u *models.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.fail(); err != nil {
		return err
	}
	for _, existing := range f.db.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return repository.ErrConflict
		}
	}
	u.ID, u.CreatedAt = f.db.next()
	cp := *u
	f.db.users[u.ID] = &cp
	return nil
}

func (f fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.fail(); err != nil {
		return nil, err
	}
	for _, u := range f.db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakeNotes struct{ db *memDB }

func (f fakeNotes) Create(_ context.Context, n *models.Note) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.fail(); err != nil {
		return err
	}
	var ts time.Time
	n.ID, ts = f.db.next()
	n.CreatedAt, n.UpdatedAt = ts, ts
	cp := *n
	f.db.notes[n.ID] = &cp
	return nil
}

func (f fakeNotes) List(_ context.Context, userID uint, filter repository.NoteFilter) ([]models.NoteListItem, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.fail(); err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(filter.Query))
	items := []models.NoteListItem{}
	for _, n := range f.db.notes {
		if n.UserID != userID {
			continue
		}
		if filter.FolderID != nil && (n.FolderID == nil || *n.FolderID != *filter.FolderID) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(n.NoteTitle), q) && !strings.Contains(strings.ToLower(n.NoteContent), q) {
			continue
		}
		item := models.NoteListItem{ID: n.ID, NoteTitle: n.NoteTitle, NoteContent: n.NoteContent, CreatedAt: n.CreatedAt, UpdatedAt: n.UpdatedAt}
		if n.FolderID != nil {
			if fo, ok := f.db.folders[*n.FolderID]; ok {
				name, id := fo.FolderName, fo.ID
				item.FolderName, item.FolderID = &name, &id
			}
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].UpdatedAt.After(items[j].UpdatedAt) })
	return items, nil
}

func (f fakeNotes) Get(_ context.Context, userID, noteID uint) (*models.Note, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.fail(); err != nil {
		return nil, err
	}
	n, ok := f.db.notes[noteID]
	if !ok || n.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (f fakeNotes) Update(_ context.Context, userID, noteID uint, fields repository.NoteFields) (*models.Note, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.fail(); err != nil {
		return nil, err
	}
	n, ok := f.db.notes[noteID]
	if !ok || n.UserID != userID {
		return nil, repository.ErrNotFound
	}
	n.NoteTitle, n.NoteContent, n.FolderID = fields.Title, fields.Content, fields.FolderID
	n.UpdatedAt = f.db.now()
	cp := *n
	return &cp, nil
}

func (f fakeNotes) Delete(_ context.Context, userID, noteID uint) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.fail(); err != nil {
		return err
	}
	n, ok := f.db.notes[noteID]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.db.notes, noteID)
	for id, m := range f.db.media {
		if m.NoteID == noteID {
			delete(f.db.media, id)
		}
	}
	for k := range f.db.noteTags {
		if k[0] == noteID {
			delete(f.db.noteTags, k)
		}
	}
	return nil
}

type fakeFolders struct{ db *memDB }

func (f fakeFolders) Create(_ context.Context, fo *models.Folder) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.fail(); err != nil {
		return err
	}
	fo.ID, fo.CreatedAt = f.db.next()
	cp := *fo
	f.db.folders[fo.ID] = &cp
	return nil
}

func (f fakeFolders) List(_ context.Context, userID uint) ([]models.Folder, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.fail(); err != nil {
		return nil, err
	}
	out := []models.Folder{}
	for _, fo := range f.db.folders {
		if fo.UserID == userID {
			out = append(out, *fo)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f fakeFolders) Get(_ context.Context, userID, folderID uint) (*models.Folder, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.fail(); err != nil {
		return nil, err
	}
	fo, ok := f.db.folders[folderID]
	if !ok || fo.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *fo
	return &cp, nil
}

func (f fakeFolders) Update(_ context.Context, userID, folderID uint, name string, parentID *uint) (*models.Folder, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.fail(); err != nil {
		return nil, err
	}
	fo, ok := f.db.folders[folderID]
	if !ok || fo.UserID != userID {
		return nil, repository.ErrNotFound
	}
	fo.FolderName, fo.ParentFolderID = name, parentID
	cp := *fo
	return &cp, nil
}

func (f fakeFolders) Delete(_ context.Context, userID, folderID uint) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.fail(); err != nil {
		return err
	}
	fo, ok := f.db.folders[folderID]
	if !ok || fo.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.db.folders, folderID)
	for _, n := range f.db.notes {
		if n.FolderID != nil && *n.FolderID == folderID {
			n.FolderID = nil
		}
	}
	for _, child := range f.db.folders {
		if child.ParentFolderID != nil && *child.ParentFolderID == folderID {
			child.ParentFolderID = nil
		}
	}
	return nil
}

type fakeTags struct{ db *memDB }

func (f fakeTags) GetOrCreate(_ context.Context, userID uint, name string) (*models.Tag, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.fail(); err != nil {
		return nil, err
	}
	for _, t := range f.db.tags {
		if t.UserID == userID && t.TagName == name {
			cp := *t
			return &cp, nil
		}
	}
	t := &models.Tag{UserID: userID, TagName: name}
	t.ID, t.CreatedAt = f.db.next()
	f.db.tags[t.ID] = t
	cp := *t
	return &cp, nil
}

func (f fakeTags) List(_ context.Context, userID uint) ([]models.Tag, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.fail(); err != nil {
		return nil, err
	}
	out := []models.Tag{}
	for _, t := range f.db.tags {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TagName < out[j].TagName })
	return out, nil
}

func (f fakeTags) Get(_ context.Context, userID, tagID uint) (*models.Tag, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.fail(); err != nil {
		return nil, err
	}
	t, ok := f.db.tags[tagID]
	if !ok || t.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f fakeTags) ListForNote(_ context.Context, noteID uint) ([]models.Tag, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.fail(); err != nil {
		return nil, err
	}
	out := []models.Tag{}
	for k := range f.db.noteTags {
		if k[0] == noteID {
			out = append(out, *f.db.tags[k[1]])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TagName < out[j].TagName })
	return out, nil
}

func (f fakeTags) Attach(_ context.Context, noteID, tagID uint) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.fail(); err != nil {
		return err
	}
	f.db.noteTags[[2]uint{noteID, tagID}] = true
	return nil
}

func (f fakeTags) Detach(_ context.Context, noteID, tagID uint) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.fail(); err != nil {
		return err
	}
	k := [2]uint{noteID, tagID}
	if !f.db.noteTags[k] {
		return repository.ErrNotFound
	}
	delete(f.db.noteTags, k)
	return nil
}

type fakeMedia struct{ db *memDB }

func (f fakeMedia) Create(_ context.Context, m *models.Media) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.fail(); err != nil {
		return err
	}
	m.ID, m.UploadedAt = f.db.next()
	cp := *m
	f.db.media[m.ID] = &cp
	return nil
}

func (f fakeMedia) ListByNote(_ context.Context, noteID uint) ([]models.Media, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.fail(); err != nil {
		return nil, err
	}
	out := []models.Media{}
	for _, m := range f.db.media {
		if m.NoteID == noteID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (f fakeMedia) GetOwned(_ context.Context, userID, mediaID uint) (*models.Media, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.fail(); err != nil {
		return nil, err
	}
	m, ok := f.db.media[mediaID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	n, ok := f.db.notes[m.NoteID]
	if !ok || n.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f fakeMedia) Delete(_ context.Context, mediaID uint) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if err := f.db.fail(); err != nil {
		return err
	}
	if _, ok := f.db.media[mediaID]; !ok {
		return repository.ErrNotFound
	}
	delete(f.db.media, mediaID)
	return nil
}

type fakeHealth struct {
	err error
	now time.Time
}

func (h fakeHealth) Now(context.Context) (time.Time, error) { return h.now, h.err }
func (h fakeHealth) Ping(context.Context) error             { return h.err }

var errBoom = errors.New("boom")
