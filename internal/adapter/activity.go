package adapter

import (
	"context"

	"go.temporal.io/sdk/activity"
)

// Activity exposes the Temporal activity context so that activities can be unit tested outside a worker
//
//go:generate mockgen -source=activity.go -destination=../mocks/activity.go -package=mocks -mock_names=Activity=MockActivity
type Activity interface {
	// GetInfo returns the info of the running activity
	GetInfo(ctx context.Context) activity.Info
}

type temporalActivity struct{}

// NewActivity returns the Activity backed by the Temporal SDK
func NewActivity() Activity {
	return temporalActivity{}
}

func (temporalActivity) GetInfo(ctx context.Context) activity.Info {
	return activity.GetInfo(ctx)
}
