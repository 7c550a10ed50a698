package service

import (
	"context"
	"fmt"

	"orgatlas/internal/notify"
	"orgatlas/internal/registry/models"
	id "orgatlas/pkg/domain"
)

func (s *Service) CreateCoordinates(ctx context.Context, in models.CoordinatesInput) (*models.Coordinates, error) {
	c := &models.Coordinates{}
	in.Apply(c)
	err := s.inTx(ctx, "create_coordinates", func(ctx context.Context) error {
		if err := s.coordinates.Create(ctx, c); err != nil {
			return fmt.Errorf("create coordinates: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.committed(ctx, notify.EntityCoordinates, notify.ActionCreated, int64(c.ID))
	return c, nil
}

func (s *Service) UpdateCoordinates(ctx context.Context, coordID id.CoordinatesID, in models.CoordinatesInput) (*models.Coordinates, error) {
	var c *models.Coordinates
	err := s.inTx(ctx, "update_coordinates", func(ctx context.Context) error {
		found, err := s.coordinates.FindByID(ctx, coordID)
		if err != nil {
			return notFound(err, "coordinates", coordID)
		}
		in.Apply(found)
		if err := s.coordinates.Update(ctx, found); err != nil {
			return fmt.Errorf("update coordinates: %w", err)
		}
		c = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.committed(ctx, notify.EntityCoordinates, notify.ActionUpdated, int64(c.ID))
	return c, nil
}

func (s *Service) GetCoordinates(ctx context.Context, coordID id.CoordinatesID) (*models.Coordinates, error) {
	c, err := s.coordinates.FindByID(ctx, coordID)
	if err != nil {
		return nil, notFound(err, "coordinates", coordID)
	}
	return c, nil
}

func (s *Service) ListCoordinates(ctx context.Context, page models.Page) (models.PageResult[models.Coordinates], error) {
	page, err := page.Normalize(models.CoordinatesSortFields)
	if err != nil {
		return models.PageResult[models.Coordinates]{}, err
	}
	return s.coordinates.List(ctx, page)
}
