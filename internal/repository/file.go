package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/ilinovom/fido5011-bot/internal/model"
)

type fileData struct {
	Interval *int64                     `json:"announcement_interval,omitempty"`
	Users    map[int64]*model.UserState `json:"users"`
}

// FileRepository stores state in a JSON file.
type FileRepository struct {
	path string
	mu   sync.Mutex
	data fileData
}

var _ Repository = (*FileRepository)(nil)

// NewFileRepository loads state from the given JSON file or starts empty if it is missing.
func NewFileRepository(path string) (*FileRepository, error) {
	r := &FileRepository{path: path, data: fileData{Users: map[int64]*model.UserState{}}}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRepository) load() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	file, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer file.Close()
	if err := json.NewDecoder(file).Decode(&r.data); err != nil {
		return err
	}
	if r.data.Users == nil {
		r.data.Users = map[int64]*model.UserState{}
	}
	return nil
}

// saveLocked writes data to a temporary file and renames it over the old one,
// so readers never observe a half-written file. The caller commits data to
// r.data only after a successful save.
func (r *FileRepository) saveLocked(data fileData) error {
	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := r.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

// withUser returns a copy of the data where userID maps to s. The users map
// is copied, the stored states are shared.
func (r *FileRepository) withUser(s *model.UserState) fileData {
	users := make(map[int64]*model.UserState, len(r.data.Users)+1)
	for id, u := range r.data.Users {
		users[id] = u
	}
	users[s.UserID] = s
	return fileData{Interval: r.data.Interval, Users: users}
}

func (r *FileRepository) Get(ctx context.Context, userID int64) (*model.UserState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.data.Users[userID]; ok {
		return cloneState(s), nil
	}
	return nil, os.ErrNotExist
}

func (r *FileRepository) Create(ctx context.Context, state *model.UserState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data.Users[state.UserID]; ok {
		return nil
	}
	next := r.withUser(cloneState(state))
	if err := r.saveLocked(next); err != nil {
		return err
	}
	r.data = next
	return nil
}

func (r *FileRepository) UpdateSeen(ctx context.Context, userID, lastSeen int64, shortCount int) error {
	return r.update(userID, func(s *model.UserState) {
		s.LastSeen = lastSeen
		s.ShortCount = shortCount
	})
}

func (r *FileRepository) UpdateAddr(ctx context.Context, userID int64, addr string) error {
	return r.update(userID, func(s *model.UserState) { s.Addr = &addr })
}

func (r *FileRepository) UpdateDescr(ctx context.Context, userID int64, descr string) error {
	return r.update(userID, func(s *model.UserState) { s.Descr = &descr })
}

func (r *FileRepository) update(userID int64, fn func(s *model.UserState)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.data.Users[userID]
	if !ok {
		return os.ErrNotExist
	}
	changed := cloneState(s)
	fn(changed)
	next := r.withUser(changed)
	if err := r.saveLocked(next); err != nil {
		return err
	}
	r.data = next
	return nil
}

// List returns all stored user states.
func (r *FileRepository) List(ctx context.Context) ([]*model.UserState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]*model.UserState, 0, len(r.data.Users))
	for _, s := range r.data.Users {
		res = append(res, cloneState(s))
	}
	return res, nil
}

func (r *FileRepository) GetInterval(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data.Interval == nil {
		return 0, os.ErrNotExist
	}
	return *r.data.Interval, nil
}

func (r *FileRepository) SaveInterval(ctx context.Context, seconds int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := fileData{Interval: &seconds, Users: r.data.Users}
	if err := r.saveLocked(next); err != nil {
		return err
	}
	r.data = next
	return nil
}

func (r *FileRepository) Close() error { return nil }

func cloneState(s *model.UserState) *model.UserState {
	c := *s
	if s.Addr != nil {
		addr := *s.Addr
		c.Addr = &addr
	}
	if s.Descr != nil {
		descr := *s.Descr
		c.Descr = &descr
	}
	return &c
}
