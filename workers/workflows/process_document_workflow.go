package workflows

import (
	"time"

	"github.com/ai-synapse/ocr-core/workers/activities"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// ProcessDocumentWorkflow runs the whole pipeline as one activity. The
// pipeline owns its failure semantics (a stage error marks the document
// failed), so the activity never retries: a rerun starts from uploaded, not
// from the middle of a half-written run.
func ProcessDocumentWorkflow(ctx workflow.Context, input ProcessDocumentWorkflowInput) error {
	activityOpts := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute * 30,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOpts)

	return workflow.ExecuteActivity(ctx, (*activities.Activities).ProcessDocument,
		input.Tenant, input.DocumentID, input.Engines).Get(ctx, nil)
}
