package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yoockh/portfolio/internal/models"
	mongorepo "github.com/yoockh/portfolio/internal/repositories/mongo"
	"github.com/yoockh/portfolio/internal/utils"
)

// Store is an in-memory stand-in for the Mongo repositories with the same
// ordering, join and uniqueness behavior.
type Store struct {
	mu       sync.Mutex
	clock    time.Time
	users    map[primitive.ObjectID]models.User
	comments map[primitive.ObjectID]models.Comment
	cvs      map[primitive.ObjectID]models.CV
	contacts map[primitive.ObjectID]models.ContactMessage

	// CVUpsertErr, when set, is returned by the next CV upsert.
	CVUpsertErr error
}

func NewStore() *Store {
	return &Store{
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		users:    map[primitive.ObjectID]models.User{},
		comments: map[primitive.ObjectID]models.Comment{},
		cvs:      map[primitive.ObjectID]models.CV{},
		contacts: map[primitive.ObjectID]models.ContactMessage{},
	}
}

func (s *Store) Users() mongorepo.UserRepository       { return userRepo{s} }
func (s *Store) Comments() mongorepo.CommentRepository { return commentRepo{s} }
func (s *Store) CVs() mongorepo.CVRepository           { return cvRepo{s} }
func (s *Store) Contacts() mongorepo.ContactRepository { return contactRepo{s} }

// tick returns strictly increasing timestamps so newest-first is stable.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

// CVCount reports how many CV records belong to userID.
func (s *Store) CVCount(userID primitive.ObjectID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, cv := range s.cvs {
		if cv.UserID == userID {
			n++
		}
	}
	return n
}

func (s *Store) ref(id primitive.ObjectID, withEmail bool) *models.UserRef {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	ref := &models.UserRef{ID: u.ID, Name: u.Name}
	if withEmail {
		ref.Email = u.Email
	}
	return ref
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return utils.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt = r.s.tick()
	u.UpdatedAt = u.CreatedAt
	r.s.users[u.ID] = *u
	return nil
}

func (r userRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r userRepo) List(_ context.Context) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r userRepo) SetRole(_ context.Context, id primitive.ObjectID, role models.UserRole) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return utils.ErrNotFound
	}
	u.Role = role
	r.s.users[id] = u
	return nil
}

func (r userRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return utils.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

type commentRepo struct{ s *Store }

func (r commentRepo) Create(_ context.Context, c *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.CreatedAt = r.s.tick()
	c.UpdatedAt = c.CreatedAt
	stored := *c
	stored.User = nil
	r.s.comments[c.ID] = stored
	return nil
}

func (r commentRepo) ListApproved(_ context.Context) ([]models.Comment, error) {
	return r.list(true, false), nil
}

func (r commentRepo) ListAll(_ context.Context) ([]models.Comment, error) {
	return r.list(false, true), nil
}

func (r commentRepo) list(approvedOnly, withEmail bool) []models.Comment {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Comment{}
	for _, c := range r.s.comments {
		if approvedOnly && !c.IsApproved {
			continue
		}
		c.User = r.s.ref(c.UserID, withEmail)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r commentRepo) SetApproval(_ context.Context, id primitive.ObjectID, approved bool) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	c.IsApproved = approved
	c.UpdatedAt = r.s.tick()
	r.s.comments[id] = c
	return &c, nil
}

func (r commentRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return utils.ErrNotFound
	}
	delete(r.s.comments, id)
	return nil
}

func (r commentRepo) DeleteByUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, c := range r.s.comments {
		if c.UserID == userID {
			delete(r.s.comments, id)
			n++
		}
	}
	return n, nil
}

type cvRepo struct{ s *Store }

func (r cvRepo) Upsert(_ context.Context, cv *models.CV) (*models.CV, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.CVUpsertErr; err != nil {
		r.s.CVUpsertErr = nil
		return nil, err
	}

	now := r.s.tick()
	cv.IsApproved = false
	cv.UpdatedAt = now
	cv.User = nil

	for id, existing := range r.s.cvs {
		if existing.UserID != cv.UserID {
			continue
		}
		prev := existing
		cv.ID = id
		cv.CreatedAt = existing.CreatedAt
		r.s.cvs[id] = *cv
		return &prev, nil
	}

	cv.ID = primitive.NewObjectID()
	cv.CreatedAt = now
	r.s.cvs[cv.ID] = *cv
	return nil, nil
}

func (r cvRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.CV, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cv, ok := r.s.cvs[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	return &cv, nil
}

func (r cvRepo) GetByUser(_ context.Context, userID primitive.ObjectID) (*models.CV, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, cv := range r.s.cvs {
		if cv.UserID == userID {
			return &cv, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r cvRepo) ListAll(_ context.Context) ([]models.CV, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.CV{}
	for _, cv := range r.s.cvs {
		cv.User = r.s.ref(cv.UserID, true)
		out = append(out, cv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r cvRepo) SetApproval(_ context.Context, id primitive.ObjectID, approved bool) (*models.CV, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cv, ok := r.s.cvs[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cv.IsApproved = approved
	cv.UpdatedAt = r.s.tick()
	r.s.cvs[id] = cv
	return &cv, nil
}

func (r cvRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.cvs[id]; !ok {
		return utils.ErrNotFound
	}
	delete(r.s.cvs, id)
	return nil
}

type contactRepo struct{ s *Store }

func (r contactRepo) Create(_ context.Context, m *models.ContactMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	m.CreatedAt = r.s.tick()
	m.UpdatedAt = m.CreatedAt
	r.s.contacts[m.ID] = *m
	return nil
}

func (r contactRepo) ListAll(_ context.Context) ([]models.ContactMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.ContactMessage{}
	for _, m := range r.s.contacts {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r contactRepo) SetStatus(_ context.Context, id primitive.ObjectID, status models.ContactStatus) (*models.ContactMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.contacts[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	m.Status = status
	m.UpdatedAt = r.s.tick()
	r.s.contacts[id] = m
	return &m, nil
}
