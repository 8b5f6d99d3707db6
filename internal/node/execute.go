package node

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/conductor-clappia/internal/integration/clappia"
	clog "github.com/tombee/conductor-clappia/internal/log"
	"github.com/tombee/conductor-clappia/internal/operation/api"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// ExecuteInput is everything one execution consumes.
type ExecuteInput struct {
	// Items is the input stream; it may be empty
	Items []Item

	// Params resolves parameters per item index
	Params ParameterResolver

	// Credentials is read once per execution
	Credentials CredentialSource

	// ContinueOnFail records item failures as {"error": message} items
	// instead of aborting
	ContinueOnFail bool
}

// Execute runs the selected operation once per input item, or once when
// there is no input, and returns a single output list.
//
// Output items carry a paired item only when there was input. Without
// ContinueOnFail the first item failure aborts the execution.
func (n *Node) Execute(ctx context.Context, in *ExecuteInput) ([][]Item, error) {
	if in == nil || in.Params == nil || in.Credentials == nil {
		return nil, fmt.Errorf("node: parameters and credentials are required")
	}

	executionID := uuid.NewString()

	sel, err := readSelection(in.Params)
	if err != nil {
		return nil, err
	}
	v, err := variantFor(sel.operation)
	if err != nil {
		return nil, err
	}

	logger := clog.WithExecutionContext(n.logger, executionID, string(sel.operation))

	ctx, span := n.tracer.Start(ctx, "clappia.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("clappia.execution_id", executionID),
			attribute.String("clappia.resource", string(sel.resource)),
			attribute.String("clappia.operation", string(sel.operation)),
			attribute.Int("clappia.input_items", len(in.Items)),
		),
	)
	defer span.End()

	out, err := n.execute(ctx, logger, sel.operation, v, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		n.metrics.recordExecution(sel.operation, statusError)
		return nil, err
	}

	span.SetAttributes(attribute.Int("clappia.output_items", len(out)))
	span.SetStatus(codes.Ok, "")
	n.metrics.recordExecution(sel.operation, statusSuccess)
	return [][]Item{out}, nil
}

func (n *Node) execute(ctx context.Context, logger *slog.Logger, op Operation, v variant, in *ExecuteInput) ([]Item, error) {
	creds, err := in.Credentials.Credentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch credentials: %w", err)
	}

	client, err := clappia.New(&api.ProviderConfig{
		Transport: n.transport,
		BaseURL:   n.baseURL,
	}, creds, clappia.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	hasInput := len(in.Items) > 0
	count := max(1, len(in.Items))
	logger.DebugContext(ctx, "execution started", "items", count)

	out := make([]Item, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		index := 0
		if hasInput {
			index = i
		}

		results, err := n.runItem(ctx, logger, op, v, &call{
			client: client,
			params: paramReader{resolver: in.Params, index: index},
		}, index)
		if err != nil {
			if !in.ContinueOnFail {
				return nil, err
			}
			out = append(out, Item{
				JSON:       map[string]any{"error": err.Error()},
				PairedItem: pairedItem(hasInput, i),
			})
			continue
		}

		for _, r := range results {
			out = append(out, Item{JSON: r, PairedItem: pairedItem(hasInput, i)})
		}
	}

	logger.DebugContext(ctx, "execution finished", "output_items", len(out))
	return out, nil
}

func (n *Node) runItem(ctx context.Context, logger *slog.Logger, op Operation, v variant, c *call, index int) ([]map[string]any, error) {
	ctx, span := n.tracer.Start(ctx, "clappia.item",
		trace.WithAttributes(attribute.Int("clappia.item_index", index)),
	)
	defer span.End()

	start := time.Now()
	results, err := v.run(ctx, c)
	duration := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		n.metrics.recordItem(op, duration.Seconds(), statusError, 0)
		logger.WarnContext(ctx, "item failed",
			slog.Int(clog.ItemIndexKey, index),
			clog.Duration(duration.Milliseconds()),
			clog.Error(err),
		)
		return nil, err
	}

	span.SetAttributes(attribute.Int("clappia.results", len(results)))
	n.metrics.recordItem(op, duration.Seconds(), statusSuccess, len(results))
	logger.DebugContext(ctx, "item processed",
		slog.Int(clog.ItemIndexKey, index),
		slog.Int("results", len(results)),
		clog.Duration(duration.Milliseconds()),
	)
	return results, nil
}

func pairedItem(hasInput bool, i int) *PairedItem {
	if !hasInput {
		return nil
	}
	return &PairedItem{Item: i}
}
