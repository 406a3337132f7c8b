package artifact_loader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/turbot/songplay-etl/types"
)

// max size of a single line, activity and catalog records are well under this
const maxLineSize = 4 * 1024 * 1024

// scanLines sends each non-blank line of the reader to dataChan
func scanLines(ctx context.Context, r io.Reader, info *types.ArtifactInfo, dataChan chan<- *types.RowData) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case dataChan <- &types.RowData{Data: line, Artifact: info, Line: lineNumber}:
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading %s at line %d: %w", info.OriginalName, lineNumber+1, err)
	}
	return nil
}
