package personnel

import "context"

type PersonnelRepository interface {
	Create(ctx context.Context, p Personnel) (Personnel, error)
	GetByID(ctx context.Context, id string) (Personnel, error)
	List(ctx context.Context, filter ListFilter) ([]Personnel, error)
	Update(ctx context.Context, p Personnel) (Personnel, error)
	Delete(ctx context.Context, id string) error
	CountActiveByDepartment(ctx context.Context, department string) (int, error)
}
