package commands

import (
	"context"

	"openbook/internal/domain/resource"
	"openbook/internal/infra"
	"openbook/internal/pkg/clock"
	"openbook/internal/pkg/errs"
	"openbook/internal/pkg/patch"
	"openbook/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateResourceInput struct {
	Name          string
	Description   string
	TotalMemoryGB int32
}

// UpdateResourceInput patches capacity and availability. Shrinking
// capacity or deactivating never touches existing bookings; it only
// tightens future admissions.
type UpdateResourceInput struct {
	TotalMemoryGB *int32
	IsActive      *bool
}

type ResourceCommands interface {
	CreateResource(ctx context.Context, in CreateResourceInput) (uuid.UUID, error)
	UpdateResource(ctx context.Context, id uuid.UUID, in UpdateResourceInput) error
}

type resourceCommandsImpl struct {
	uow shared.UnitOfWork
	clk clock.Clock
}

func NewResourceCommands(uow shared.UnitOfWork, clk clock.Clock) ResourceCommands {
	return &resourceCommandsImpl{uow: uow, clk: clk}
}

func (c *resourceCommandsImpl) CreateResource(ctx context.Context, in CreateResourceInput) (uuid.UUID, error) {
	r, err := resource.NewResource(uuid.New(), in.Name, in.Description, in.TotalMemoryGB, true)
	if err != nil {
		return uuid.Nil, errs.Mark(err, errs.ErrInvalidInput)
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Resources().Create(ctx, tx.DB(), r)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return r.ID(), nil
}

func (c *resourceCommandsImpl) UpdateResource(ctx context.Context, id uuid.UUID, in UpdateResourceInput) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, err := tx.Reads().ResourceByID(ctx, id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.Mark(err, errs.ErrResourceNotFound)
			}
			return err
		}

		total := patch.Coalesce(in.TotalMemoryGB, snap.TotalMemoryGB)
		active := patch.Coalesce(in.IsActive, snap.IsActive)
		if total <= 0 {
			return errs.Mark(resource.ErrInvalidCapacity, errs.ErrInvalidInput)
		}

		matched, err := tx.Resources().Update(ctx, tx.DB(), id, total, active, c.clk.Now())
		if err != nil {
			return err
		}
		if !matched {
			return errs.ErrResourceNotFound
		}
		return nil
	})
}
