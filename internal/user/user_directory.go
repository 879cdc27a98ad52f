package user

import (
	"context"
	"errors"

	"github.com/jackson951/flexileave-app-sub001/internal/domain"
	"github.com/jackson951/flexileave-app-sub001/internal/messaging/kafka/consumer"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Directory answers the user lookups other modules need without exposing
// the repository.
type Directory struct {
	repo Repository
}

func NewDirectory(repo Repository) *Directory {
	return &Directory{repo: repo}
}

func (d *Directory) FindActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	return d.repo.FindActiveIDs(ctx)
}

func (d *Directory) FindReviewerIDs(ctx context.Context) ([]uuid.UUID, error) {
	return d.repo.FindActiveIDsByRoles(ctx, domain.RoleAdmin, domain.RoleManager)
}

func (d *Directory) FindRecipient(ctx context.Context, id string) (consumer.Recipient, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return consumer.Recipient{}, consumer.ErrRecipientUnavailable
	}
	u, err := d.repo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return consumer.Recipient{}, consumer.ErrRecipientUnavailable
		}
		return consumer.Recipient{}, err
	}
	if !u.IsActive {
		return consumer.Recipient{}, consumer.ErrRecipientUnavailable
	}
	return consumer.Recipient{Name: u.Name, Email: u.Email}, nil
}
