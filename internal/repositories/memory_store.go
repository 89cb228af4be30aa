package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sociogram/backend/internal/models"
)

// MemoryStore implements Store in memory. It backs the test suite and is
// handy for local development without a database. IDs are assigned from a
// single monotonic counter, so ordering by ID matches insertion order.
//
// Atomically applies the callback directly: writes inside a failed callback
// are not rolled back, which is acceptable for a test store.
type MemoryStore struct {
	mu       sync.Mutex
	lastID   uint
	users    map[uint]*models.User
	posts    map[uint]*models.Post
	comments map[uint]*models.Comment
	replies  map[uint]*models.Reply
	likes    map[uint]*models.Like
	outbox   map[uint]*models.OutboxEvent
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uint]*models.User),
		posts:    make(map[uint]*models.Post),
		comments: make(map[uint]*models.Comment),
		replies:  make(map[uint]*models.Reply),
		likes:    make(map[uint]*models.Like),
		outbox:   make(map[uint]*models.OutboxEvent),
	}
}

func (s *MemoryStore) Users() UserRepository       { return memoryUsers{s} }
func (s *MemoryStore) Posts() PostRepository       { return memoryPosts{s} }
func (s *MemoryStore) Comments() CommentRepository { return memoryComments{s} }
func (s *MemoryStore) Replies() ReplyRepository    { return memoryReplies{s} }
func (s *MemoryStore) Likes() LikeRepository       { return memoryLikes{s} }
func (s *MemoryStore) Outbox() OutboxRepository    { return memoryOutbox{s} }

// Atomically runs fn against the same store
func (s *MemoryStore) Atomically(ctx context.Context, fn func(Store) error) error {
	return fn(s)
}

// nextID must be called with s.mu held
func (s *MemoryStore) nextID() uint {
	s.lastID++
	return s.lastID
}

// === Users ===

type memoryUsers struct{ s *MemoryStore }

func (m memoryUsers) CreateUser(ctx context.Context, user *models.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return ErrDuplicate
		}
	}
	user.ID = m.s.nextID()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	m.s.users[user.ID] = &cp
	return nil
}

func (m memoryUsers) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m memoryUsers) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m memoryUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m memoryUsers) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.FirebaseUID != "" && u.FirebaseUID == firebaseUID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m memoryUsers) GetUsersByIDs(ctx context.Context, ids []uint) (map[uint]models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	users := make(map[uint]models.User, len(ids))
	for _, id := range ids {
		if u, ok := m.s.users[id]; ok {
			users[id] = *u
		}
	}
	return users, nil
}

func (m memoryUsers) UpdateUser(ctx context.Context, user *models.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.users[user.ID]; !ok {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	cp := *user
	m.s.users[user.ID] = &cp
	return nil
}

// === Posts ===

type memoryPosts struct{ s *MemoryStore }

func (m memoryPosts) CreatePost(ctx context.Context, post *models.Post) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	post.ID = m.s.nextID()
	post.CreatedAt = time.Now().UTC()
	post.UpdatedAt = post.CreatedAt
	cp := *post
	m.s.posts[post.ID] = &cp
	return nil
}

func (m memoryPosts) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m memoryPosts) GetPosts(ctx context.Context, offset, limit int) ([]models.Post, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return paginatePosts(m.s.collectPosts(func(*models.Post) bool { return true }), offset, limit), nil
}

func (m memoryPosts) GetPostsByUserID(ctx context.Context, userID uint, offset, limit int) ([]models.Post, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return paginatePosts(m.s.collectPosts(func(p *models.Post) bool { return p.UserID == userID }), offset, limit), nil
}

// collectPosts must be called with s.mu held; returns newest first
func (s *MemoryStore) collectPosts(match func(*models.Post) bool) []models.Post {
	all := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if match(p) {
			all = append(all, *p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return all
}

func paginatePosts(all []models.Post, offset, limit int) []models.Post {
	if offset >= len(all) {
		return []models.Post{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

func (m memoryPosts) CountPosts(ctx context.Context) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return int64(len(m.s.posts)), nil
}

func (m memoryPosts) CountPostsByUserID(ctx context.Context, userID uint) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var count int64
	for _, p := range m.s.posts {
		if p.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m memoryPosts) UpdatePost(ctx context.Context, post *models.Post) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.posts[post.ID]; !ok {
		return ErrNotFound
	}
	post.UpdatedAt = time.Now().UTC()
	cp := *post
	m.s.posts[post.ID] = &cp
	return nil
}

func (m memoryPosts) DeletePost(ctx context.Context, id uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.posts, id)
	return nil
}

func (m memoryPosts) IncrementLikesCount(ctx context.Context, postID uint) error {
	return m.s.adjustPost(postID, func(p *models.Post) { p.LikesCount++ })
}

func (m memoryPosts) DecrementLikesCount(ctx context.Context, postID uint) error {
	return m.s.adjustPost(postID, func(p *models.Post) {
		if p.LikesCount > 0 {
			p.LikesCount--
		}
	})
}

func (m memoryPosts) IncrementCommentsCount(ctx context.Context, postID uint) error {
	return m.s.adjustPost(postID, func(p *models.Post) { p.CommentsCount++ })
}

func (m memoryPosts) DecrementCommentsCount(ctx context.Context, postID uint) error {
	return m.s.adjustPost(postID, func(p *models.Post) {
		if p.CommentsCount > 0 {
			p.CommentsCount--
		}
	})
}

func (s *MemoryStore) adjustPost(postID uint, apply func(*models.Post)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return nil // matches the SQL UPDATE: zero rows affected is not an error
	}
	apply(p)
	return nil
}

// === Comments ===

type memoryComments struct{ s *MemoryStore }

func (m memoryComments) CreateComment(ctx context.Context, comment *models.Comment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	comment.ID = m.s.nextID()
	comment.CreatedAt = time.Now().UTC()
	comment.UpdatedAt = comment.CreatedAt
	cp := *comment
	m.s.comments[comment.ID] = &cp
	return nil
}

func (m memoryComments) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m memoryComments) GetCommentsByPostID(ctx context.Context, postID uint) ([]models.Comment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	comments := make([]models.Comment, 0)
	for _, c := range m.s.comments {
		if c.PostID == postID {
			comments = append(comments, *c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

func (m memoryComments) DeleteComment(ctx context.Context, id uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.comments, id)
	return nil
}

func (m memoryComments) DeleteCommentsByPostID(ctx context.Context, postID uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, c := range m.s.comments {
		if c.PostID == postID {
			delete(m.s.comments, id)
		}
	}
	return nil
}

func (m memoryComments) IncrementRepliesCount(ctx context.Context, commentID uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if c, ok := m.s.comments[commentID]; ok {
		c.RepliesCount++
	}
	return nil
}

func (m memoryComments) DecrementRepliesCount(ctx context.Context, commentID uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if c, ok := m.s.comments[commentID]; ok && c.RepliesCount > 0 {
		c.RepliesCount--
	}
	return nil
}

// === Replies ===

type memoryReplies struct{ s *MemoryStore }

func (m memoryReplies) CreateReply(ctx context.Context, reply *models.Reply) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	reply.ID = m.s.nextID()
	reply.CreatedAt = time.Now().UTC()
	cp := *reply
	m.s.replies[reply.ID] = &cp
	return nil
}

func (m memoryReplies) GetReplyByID(ctx context.Context, id uint) (*models.Reply, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.replies[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m memoryReplies) GetRepliesByCommentID(ctx context.Context, commentID uint) ([]models.Reply, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	replies := make([]models.Reply, 0)
	for _, r := range m.s.replies {
		if r.CommentID == commentID {
			replies = append(replies, *r)
		}
	}
	sort.Slice(replies, func(i, j int) bool { return replies[i].ID < replies[j].ID })
	return replies, nil
}

func (m memoryReplies) DeleteReply(ctx context.Context, id uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.replies, id)
	return nil
}

func (m memoryReplies) DeleteRepliesByCommentID(ctx context.Context, commentID uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, r := range m.s.replies {
		if r.CommentID == commentID {
			delete(m.s.replies, id)
		}
	}
	return nil
}

func (m memoryReplies) DeleteRepliesByPostID(ctx context.Context, postID uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, r := range m.s.replies {
		if c, ok := m.s.comments[r.CommentID]; ok && c.PostID == postID {
			delete(m.s.replies, id)
		}
	}
	return nil
}

// === Likes ===

type memoryLikes struct{ s *MemoryStore }

func (m memoryLikes) CreateLike(ctx context.Context, like *models.Like) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, l := range m.s.likes {
		if l.PostID == like.PostID && l.UserID == like.UserID {
			return ErrDuplicate
		}
	}
	like.ID = m.s.nextID()
	like.CreatedAt = time.Now().UTC()
	cp := *like
	m.s.likes[like.ID] = &cp
	return nil
}

func (m memoryLikes) DeleteLike(ctx context.Context, postID, userID uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, l := range m.s.likes {
		if l.PostID == postID && l.UserID == userID {
			delete(m.s.likes, id)
			return nil
		}
	}
	return ErrNotFound
}

func (m memoryLikes) HasUserLikedPost(ctx context.Context, postID, userID uint) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, l := range m.s.likes {
		if l.PostID == postID && l.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m memoryLikes) GetLikesCountByPostID(ctx context.Context, postID uint) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var count int64
	for _, l := range m.s.likes {
		if l.PostID == postID {
			count++
		}
	}
	return count, nil
}

func (m memoryLikes) DeleteLikesByPostID(ctx context.Context, postID uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, l := range m.s.likes {
		if l.PostID == postID {
			delete(m.s.likes, id)
		}
	}
	return nil
}

// === Outbox ===

type memoryOutbox struct{ s *MemoryStore }

func (m memoryOutbox) Enqueue(ctx context.Context, event *models.OutboxEvent) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	event.ID = m.s.nextID()
	event.CreatedAt = time.Now().UTC()
	cp := *event
	m.s.outbox[event.ID] = &cp
	return nil
}

func (m memoryOutbox) FetchPending(ctx context.Context, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	pending := make([]models.OutboxEvent, 0)
	for _, e := range m.s.outbox {
		if e.PublishedAt == nil && e.Attempts < maxAttempts {
			pending = append(pending, *e)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].ID < pending[j].ID })
	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (m memoryOutbox) MarkPublished(ctx context.Context, id uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if e, ok := m.s.outbox[id]; ok {
		now := time.Now().UTC()
		e.PublishedAt = &now
	}
	return nil
}

func (m memoryOutbox) RecordFailure(ctx context.Context, id uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if e, ok := m.s.outbox[id]; ok {
		e.Attempts++
	}
	return nil
}
