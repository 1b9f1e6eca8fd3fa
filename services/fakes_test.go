package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/scorebridge/brackets"
	"github.com/Dosada05/scorebridge/cache"
	"github.com/Dosada05/scorebridge/clients"
	"github.com/Dosada05/scorebridge/models"
	"github.com/Dosada05/scorebridge/repositories"
	"github.com/Dosada05/scorebridge/storage"
	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int]*models.User)}
	for _, u := range users {
		_ = r.Create(context.Background(), u)
	}
	return r
}

func cloneUser(u *models.User) *models.User {
	out := *u
	if u.StartGGToken != nil {
		tok := *u.StartGGToken
		out.StartGGToken = &tok
	}
	return &out
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Login == user.Login {
			return repositories.ErrUserLoginConflict
		}
	}
	r.nextID++
	user.ID = r.nextID
	if user.ClientToken == uuid.Nil {
		user.ClientToken = uuid.New()
	}
	user.CreatedAt = time.Now()
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *fakeUserRepo) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *fakeUserRepo) GetByLogin(_ context.Context, login string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Login == login })
}

func (r *fakeUserRepo) GetByClientToken(_ context.Context, token uuid.UUID) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ClientToken == token })
}

func (r *fakeUserRepo) update(id int, fn func(*models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	fn(u)
	return nil
}

func (r *fakeUserRepo) UpdateChallongeAPIKey(_ context.Context, id int, apiKey string) error {
	return r.update(id, func(u *models.User) { u.ChallongeAPIKey = apiKey })
}

func (r *fakeUserRepo) UpdateStartGGToken(_ context.Context, id int, token *models.TokenInfo) error {
	return r.update(id, func(u *models.User) {
		if token == nil {
			u.StartGGToken = nil
			return
		}
		tok := *token
		u.StartGGToken = &tok
	})
}

func (r *fakeUserRepo) TouchLastAuthed(_ context.Context, id int, at time.Time) error {
	return r.update(id, func(u *models.User) { u.LastAuthedAt = &at })
}

func (r *fakeUserRepo) ListWithStartGGTokens(_ context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, u := range r.users {
		if u.StartGGToken != nil {
			out = append(out, *cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeChallonge struct {
	mu         sync.Mutex
	tournament *models.ChallongeTournament
	getErr     error
	updateErr  error
	updates    []*models.ChallongeMatchUpdate
	gets       int
	// entered and block, when set, hold GetTournament until block is closed.
	entered chan struct{}
	block   chan struct{}
}

func (f *fakeChallonge) GetTournament(_ context.Context, _ string, _ string) (*models.ChallongeTournament, error) {
	if f.block != nil {
		f.entered <- struct{}{}
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return nil, f.getErr
	}
	t := *f.tournament
	return &t, nil
}

func (f *fakeChallonge) UpdateMatch(_ context.Context, _ string, _ string, _ models.PolymorphicID, body *models.ChallongeMatchUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, body)
	return nil
}

type fakeStartGG struct {
	mu       sync.Mutex
	pages    map[int]*models.StartGGEvent
	pageErrs map[int]error
	// failTokens rejects calls made with these tokens.
	failTokens map[string]error
	tokens     []string
	reports    []*models.StartGGReportBracketSet
}

func (f *fakeStartGG) GetEventSetsPage(_ context.Context, token, _ string, page, _ int) (*models.StartGGEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	if err := f.failTokens[token]; err != nil {
		return nil, err
	}
	if err := f.pageErrs[page]; err != nil {
		return nil, err
	}
	ev := *f.pages[page]
	ev.Sets.Nodes = append([]models.StartGGSet(nil), f.pages[page].Sets.Nodes...)
	return &ev, nil
}

func (f *fakeStartGG) ReportBracketSet(_ context.Context, token string, report *models.StartGGReportBracketSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	if err := f.failTokens[token]; err != nil {
		return err
	}
	f.reports = append(f.reports, report)
	return nil
}

type fakeOAuth struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
	next    func(call int) (*models.TokenInfo, error)
	// singleUse rejects a refresh token that was already exchanged, as start.gg does.
	singleUse bool
	used      []string
}

func (f *fakeOAuth) RefreshToken(_ context.Context, refreshToken string) (*models.TokenInfo, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	reused := slices.Contains(f.used, refreshToken)
	f.used = append(f.used, refreshToken)
	f.mu.Unlock()

	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.release != nil {
		<-f.release
	}
	if f.singleUse && reused {
		return nil, &clients.HTTPStatusError{StatusCode: http.StatusBadRequest}
	}
	return f.next(call)
}

func (f *fakeOAuth) UsedRefreshTokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.used)
}

func (f *fakeOAuth) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []brackets.WebSocketMessage
}

func (b *recordingBroadcaster) BroadcastToRoom(_ string, message interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if msg, ok := message.(brackets.WebSocketMessage); ok {
		b.messages = append(b.messages, msg)
	}
}

func (b *recordingBroadcaster) Types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.messages))
	for _, m := range b.messages {
		out = append(out, m.Type)
	}
	return out
}

type memStore struct {
	mu        sync.Mutex
	snapshots map[string]*cache.Snapshot
}

func newMemStore() *memStore {
	return &memStore{snapshots: make(map[string]*cache.Snapshot)}
}

func (s *memStore) Get(key string) (*cache.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[key]
	return snap, ok, nil
}

func (s *memStore) Put(snapshot *cache.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshot.Key] = snapshot
	return nil
}

func (s *memStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, key)
	return nil
}

func (s *memStore) ForEach(fn func(snapshot *cache.Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, snap := range s.snapshots {
		if err := fn(snap); err != nil {
			return err
		}
	}
	return nil
}

func (s *memStore) Close() error { return nil }

type memUploader struct {
	mu      sync.Mutex
	objects map[string]string
	deleted []string
}

func newMemUploader() *memUploader {
	return &memUploader{objects: make(map[string]string)}
}

func (u *memUploader) Upload(_ context.Context, key string, _ string, reader io.Reader) (*storage.UploadResult, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = buf.String()
	return &storage.UploadResult{Key: key, Location: "mem://" + key}, nil
}

func (u *memUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *memUploader) GetPublicURL(key string) string {
	return "mem://" + key
}
