package personnel

import "context"

type PersonnelService interface {
	Create(ctx context.Context, req CreatePersonnelRequest) (PersonnelResponse, error)
	Get(ctx context.Context, id string) (PersonnelResponse, error)
	List(ctx context.Context, filter ListFilter) ([]PersonnelResponse, error)
	Update(ctx context.Context, req UpdatePersonnelRequest) (PersonnelResponse, error)
	Delete(ctx context.Context, id string) error
}
