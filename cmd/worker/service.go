package main

import (
	"context"

	"github.com/pixelmark/pixelmark/internal/model"
)

type ImageWorkerService interface {
	UpdateStatus(ctx context.Context, id string, newStat model.Status) error
	SaveResult(ctx context.Context, res *model.Image) error
	Get(ctx context.Context, id string) (*model.Image, error)
}
