package repository

import (
	"sort"
	"sync"
	"user-api/internal/entity"
)

// UserRepository keeps users in memory for the lifetime of the process.
// All access is serialized behind mu.
type UserRepository struct {
	mu     sync.RWMutex
	users  map[int]entity.User
	nextID int
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:  make(map[int]entity.User),
		nextID: 1,
	}
}

// GetUsers returns every stored user ordered by ID.
func (r *UserRepository) GetUsers() []entity.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]entity.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	return users
}

func (r *UserRepository) GetUserByID(id int) (entity.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	return user, ok
}

// CreateUser stores user under a fresh ID. IDs are never reused.
func (r *UserRepository) CreateUser(user entity.User) entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user

	return user
}

// UpdateUser overwrites name, email and age of an existing user and returns
// the stored result.
func (r *UserRepository) UpdateUser(id int, user entity.User) (entity.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[id]
	if !ok {
		return entity.User{}, false
	}

	stored.Name = user.Name
	stored.Email = user.Email
	stored.Age = user.Age
	r.users[id] = stored

	return stored, true
}

func (r *UserRepository) DeleteUser(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return false
	}
	delete(r.users, id)

	return true
}
