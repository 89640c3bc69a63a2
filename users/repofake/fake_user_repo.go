package fakeuserrepo

import (
	"errors"
	"sync"
	"time"

	"github.com/jrsteele09/mitti-dashboard/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

var (
	ErrNotFound       = errors.New("not found")
	ErrUsernameExists = errors.New("username already registered")
	ErrEmailExists    = errors.New("email already registered")
)

type FakeUserRepo struct {
	users      map[int]*users.User
	usernameID map[string]int
	emailID    map[string]int
	nextID     int
	lock       sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:      make(map[int]*users.User),
		usernameID: make(map[string]int),
		emailID:    make(map[string]int),
		nextID:     1,
	}
}

// Create assigns the next numeric id and stamps the creation time.
func (ur *FakeUserRepo) Create(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if _, ok := ur.usernameID[user.Username]; ok {
		return ErrUsernameExists
	}
	if _, ok := ur.emailID[user.Email]; ok {
		return ErrEmailExists
	}

	if user.ID == 0 {
		user.ID = ur.nextID
	}
	if user.ID >= ur.nextID {
		ur.nextID = user.ID + 1
	}
	if user.CreatedAt == nil {
		now := time.Now().UTC()
		user.CreatedAt = &now
	}
	user.IsActive = true

	ur.users[user.ID] = user.Clone()
	ur.usernameID[user.Username] = user.ID
	ur.emailID[user.Email] = user.ID
	return nil
}

func (ur *FakeUserRepo) GetByUsername(username string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.usernameID[username]
	if !ok {
		return nil, ErrNotFound
	}
	return ur.users[id].Clone(), nil
}

func (ur *FakeUserRepo) GetByEmail(email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailID[email]
	if !ok {
		return nil, ErrNotFound
	}
	return ur.users[id].Clone(), nil
}

func (ur *FakeUserRepo) GetByID(id int) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	if _, ok := ur.users[id]; !ok {
		return nil, ErrNotFound
	}
	return ur.users[id].Clone(), nil
}
