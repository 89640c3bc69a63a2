package users

type UserRepo interface {
	Create(user *User) error
	GetByUsername(username string) (*User, error)
	GetByEmail(email string) (*User, error)
	GetByID(id int) (*User, error)
}
