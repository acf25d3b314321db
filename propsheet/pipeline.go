package propsheet

import (
	"context"
	"log/slog"

	"github.com/topi314/tint"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// processActiveRows runs one fetch, fill and attach sequence to completion
// and returns how many files were generated out of how many active rows.
//
// Smartsheet API failures during the fetch are deliberately treated as "no
// actionable data": they are logged and the run completes empty rather than
// failing the request. Local I/O failures (missing template, full disk) are
// returned and surface as server errors.
func (s *Server) processActiveRows(ctx context.Context) (int, int, error) {
	s.pipelineMu.Lock()
	defer s.pipelineMu.Unlock()

	ctx, span := s.tracer.Start(ctx, "processActiveRows")
	defer span.End()

	rows, rowIDs, err := s.fetcher.FetchActiveRows(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch active rows, treating as empty", tint.Err(err))
		span.RecordError(err)
		return 0, 0, nil
	}
	span.SetAttributes(attribute.Int("active_rows", len(rows)))

	var generated int
	for _, row := range rows {
		path, err := s.generator.Generate(row)
		if err != nil {
			span.SetStatus(codes.Error, "failed to generate file")
			span.RecordError(err)
			return generated, len(rows), err
		}
		if path == "" {
			continue
		}
		slog.DebugContext(ctx, "generated file", slog.String("path", path))
		generated++
	}

	if err = s.publisher.PublishAll(ctx, rowIDs); err != nil {
		span.SetStatus(codes.Error, "failed to publish attachments")
		span.RecordError(err)
		return generated, len(rows), err
	}

	return generated, len(rows), nil
}
