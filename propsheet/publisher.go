package propsheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/topi314/tint"

	"github.com/tillfield/propsheet/internal/ezhttp"
	"github.com/tillfield/propsheet/propsheet/smartsheet"
)

func NewPublisher(client *smartsheet.Client, sheetID int64, outputDir string) *Publisher {
	return &Publisher{
		client:    client,
		sheetID:   sheetID,
		outputDir: outputDir,
	}
}

type Publisher struct {
	client    *smartsheet.Client
	sheetID   int64
	outputDir string
}

// PublishAll walks every property folder under the output directory and
// attaches its generated file to the matching sheet row. Folders without a
// row id in rowIDs or without a usable file are skipped, and upload failures
// are logged without aborting the rest of the batch.
func (p *Publisher) PublishAll(ctx context.Context, rowIDs map[string]int64) error {
	entries, err := os.ReadDir(p.outputDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read output directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		address := entry.Name()

		name := firstWorkbook(filepath.Join(p.outputDir, address))
		if name == "" {
			continue
		}

		rowID, ok := rowIDs[address]
		if !ok {
			slog.DebugContext(ctx, "no row id for property folder, skipping", slog.String("address", address))
			continue
		}

		if err = p.publish(ctx, address, name, rowID); err != nil {
			slog.ErrorContext(ctx, "failed to attach file to row",
				slog.String("address", address),
				slog.Int64("row_id", rowID),
				tint.Err(err),
			)
		}
	}
	return nil
}

func (p *Publisher) publish(ctx context.Context, address string, name string, rowID int64) error {
	path := filepath.Join(p.outputDir, address, name)
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open generated file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat generated file: %w", err)
	}

	attachment, err := p.client.AttachFileToRow(ctx, p.sheetID, rowID, name, ezhttp.ContentTypeXLSX, info.Size(), file)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "attached file to row",
		slog.String("address", address),
		slog.Int64("row_id", rowID),
		slog.Int64("attachment_id", attachment.ID),
	)
	return nil
}

// firstWorkbook returns the lexically first workbook file name in dir,
// ignoring office lock files and half-written temp files. ReadDir already
// sorts entries by name.
func firstWorkbook(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "~$") || strings.HasSuffix(name, ".tmp") {
			continue
		}
		if strings.EqualFold(filepath.Ext(name), ".xlsx") {
			return name
		}
	}
	return ""
}
