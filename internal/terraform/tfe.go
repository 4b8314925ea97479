package terraform

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/go-tfe"

	"plandrift/internal/config"
	"plandrift/pkg/logging"
)

// runsPerPage is how many recent runs are searched for a finished plan.
const runsPerPage = 20

// unfinishedRuns have no complete plan log to read.
var unfinishedRuns = map[tfe.RunStatus]bool{
	tfe.RunPending:            true,
	tfe.RunStatus("fetching"): true,
	tfe.RunStatus("queuing"):  true,
	tfe.RunPlanQueued:         true,
	tfe.RunPlanning:           true,
	tfe.RunCanceled:           true,
	tfe.RunErrored:            true,
}

// tfeClient adapts *tfe.Client to TFEClient
type tfeClient struct {
	client *tfe.Client
}

// NewTFEClient connects to a Terraform Cloud / Enterprise API. An empty
// address uses the public Terraform Cloud endpoint.
func NewTFEClient(address, token string) (TFEClient, error) {
	cfg := &tfe.Config{
		Address: address,
		Token:   token,
	}
	client, err := tfe.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create TFE client: %w", err)
	}
	return &tfeClient{client: client}, nil
}

func (c *tfeClient) ReadWorkspace(ctx context.Context, organization, workspace string) (*tfe.Workspace, error) {
	return c.client.Workspaces.Read(ctx, organization, workspace)
}

func (c *tfeClient) ListRuns(ctx context.Context, workspaceID string) ([]*tfe.Run, error) {
	list, err := c.client.Runs.List(ctx, workspaceID, &tfe.RunListOptions{
		ListOptions: tfe.ListOptions{PageSize: runsPerPage},
	})
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}

func (c *tfeClient) PlanLogs(ctx context.Context, planID string) (io.Reader, error) {
	return c.client.Plans.Logs(ctx, planID)
}

// TFESource reads the latest finished plan of a workspace
type TFESource struct {
	client       TFEClient
	organization string
	logger       logging.Logger
}

// NewTFESource creates a TFESource for workspaces in organization
func NewTFESource(client TFEClient, organization string, logger logging.Logger) *TFESource {
	return &TFESource{
		client:       client,
		organization: organization,
		logger:       logger,
	}
}

// FetchPlan returns the plan log of the newest run with a finished plan.
func (s *TFESource) FetchPlan(ctx context.Context, target *config.Target) (string, error) {
	ws, err := s.client.ReadWorkspace(ctx, s.organization, target.Workspace)
	if err != nil {
		return "", fmt.Errorf("failed to read workspace %s/%s: %w", s.organization, target.Workspace, err)
	}

	runs, err := s.client.ListRuns(ctx, ws.ID)
	if err != nil {
		return "", fmt.Errorf("failed to list runs for workspace %s: %w", ws.ID, err)
	}

	run := latestPlannedRun(runs)
	if run == nil {
		return "", fmt.Errorf("workspace %s/%s has no run with a finished plan", s.organization, target.Workspace)
	}
	s.logger.Debug("Reading plan %s of run %s (%s) for target %s", run.Plan.ID, run.ID, run.Status, target.Name)

	logs, err := s.client.PlanLogs(ctx, run.Plan.ID)
	if err != nil {
		return "", fmt.Errorf("failed to read plan log %s: %w", run.Plan.ID, err)
	}

	data, err := io.ReadAll(logs)
	if err != nil {
		return "", fmt.Errorf("failed to stream plan log %s: %w", run.Plan.ID, err)
	}
	return string(data), nil
}

// latestPlannedRun assumes runs are ordered newest first, as the API lists them.
func latestPlannedRun(runs []*tfe.Run) *tfe.Run {
	for _, r := range runs {
		if r == nil || r.Plan == nil || r.Plan.ID == "" {
			continue
		}
		if unfinishedRuns[r.Status] {
			continue
		}
		return r
	}
	return nil
}
