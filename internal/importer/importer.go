// Package importer runs the CSV-to-Lyra order ingestion pipeline: parse
// the uploaded file, transform each row into an order submission, and push
// the submissions to the upstream API one at a time.
package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"orderbridge/internal/csvio"
	"orderbridge/internal/logging"
	"orderbridge/internal/lyra"
	"orderbridge/internal/mapping"
	"orderbridge/internal/metrics"
)

// OrderSubmitter pushes one transformed submission upstream.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, sub lyra.OrderSubmission) (json.RawMessage, error)
}

// Catalog supplies the SKU to product-id mapping.
type Catalog interface {
	Map(ctx context.Context, fresh bool) (map[string]int64, error)
}

// RowStatus is the outcome of one submitted row.
type RowStatus string

const (
	RowSubmitted RowStatus = "submitted"
	RowFailed    RowStatus = "failed"
)

// RowResult is the per-row outcome of a batch, in input order.
type RowResult struct {
	Line     int             `json:"line"`
	OrderID  string          `json:"order_id,omitempty"`
	Status   RowStatus       `json:"status"`
	Error    string          `json:"error,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`
}

// BatchResult is the partial-success report of one import batch.
type BatchResult struct {
	BatchID   uuid.UUID   `json:"batch_id"`
	FileName  string      `json:"file_name"`
	Total     int         `json:"total"`
	Submitted int         `json:"submitted"`
	Failed    int         `json:"failed"`
	Rows      []RowResult `json:"rows"`
}

// Importer wires the pipeline together.
type Importer struct {
	submitter          OrderSubmitter
	catalog            Catalog
	profile            *mapping.Profile
	fulfilmentClientID int64
	metrics            *metrics.Metrics // may be nil
}

// New creates an Importer. metrics may be nil.
func New(submitter OrderSubmitter, catalog Catalog, profile *mapping.Profile, fulfilmentClientID int64, m *metrics.Metrics) *Importer {
	return &Importer{
		submitter:          submitter,
		catalog:            catalog,
		profile:            profile,
		fulfilmentClientID: fulfilmentClientID,
		metrics:            m,
	}
}

// Run imports the uploaded file at path. Submissions are strictly
// sequential and, following the partial-success policy, a failed row does
// not abort the batch: every row gets a status entry and the batch always
// reports how far it got. Context cancellation does abort, returning the
// rows processed so far along with the error.
//
// The product catalog is refreshed before the batch so resolved ids are
// never staler than the upload itself.
func (im *Importer) Run(ctx context.Context, path, fileName string) (*BatchResult, error) {
	reader, err := csvio.Open(path)
	if err != nil {
		return nil, err
	}

	products, err := im.catalog.Map(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("refresh product catalog: %w", err)
	}

	result := &BatchResult{
		BatchID:  uuid.New(),
		FileName: fileName,
	}
	log := logging.FromContext(ctx).With("batch_id", result.BatchID)

	line := 1 // header row
	for {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("import aborted at line %d: %w", line, err)
		}

		rec, err := reader.Next()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.Total++
			result.Failed++
			result.Rows = append(result.Rows, RowResult{
				Line:   line,
				Status: RowFailed,
				Error:  err.Error(),
			})
			continue
		}

		row := RowFromFields(im.profile.Resolve(rec))
		if row.empty() {
			continue
		}

		sub := Transform(row, products, im.fulfilmentClientID)
		result.Total++

		rowResult := RowResult{Line: line, OrderID: sub.Order.ID}
		resp, err := im.submitter.SubmitOrder(ctx, sub)
		if err != nil {
			rowResult.Status = RowFailed
			rowResult.Error = err.Error()
			result.Failed++
			log.Warn("order submission failed", "line", line, "order_id", sub.Order.ID, "error", err)
		} else {
			rowResult.Status = RowSubmitted
			rowResult.Response = resp
			result.Submitted++
		}
		if im.metrics != nil {
			im.metrics.OrdersSubmitted.WithLabelValues(string(rowResult.Status)).Inc()
		}
		result.Rows = append(result.Rows, rowResult)
	}

	log.Info("import batch finished",
		"file", fileName,
		"total", result.Total,
		"submitted", result.Submitted,
		"failed", result.Failed,
	)
	return result, nil
}
