package user

import "context"

type UserRepository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	LinkGoogleAccount(ctx context.Context, id string, googleID string) (User, error)
	ListByDepartment(ctx context.Context, department string) ([]User, error)
}
