package terraform

import (
	"context"
	"io"

	"github.com/hashicorp/go-tfe"

	"plandrift/internal/config"
)

// PlanSource retrieves the raw plan text for a scan target
//
//go:generate mockery --name=PlanSource --output=./mocks
type PlanSource interface {
	FetchPlan(ctx context.Context, target *config.Target) (string, error)
}

// TFEClient is the part of the Terraform Cloud / Enterprise API used to
// read plan logs
//
//go:generate mockery --name=TFEClient --output=./mocks
type TFEClient interface {
	ReadWorkspace(ctx context.Context, organization, workspace string) (*tfe.Workspace, error)
	ListRuns(ctx context.Context, workspaceID string) ([]*tfe.Run, error)
	PlanLogs(ctx context.Context, planID string) (io.Reader, error)
}
