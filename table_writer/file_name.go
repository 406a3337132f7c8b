package table_writer

import (
	"fmt"
	"path"
	"strings"
)

// HiveDefaultPartition is the directory value used for a null or empty partition value
const HiveDefaultPartition = "__HIVE_DEFAULT_PARTITION__"

// PartFileName converts an execution id and file number to a file name,
// using the convention part-<executionId>-<n><ext>
func PartFileName(executionId string, n int, ext string) string {
	return fmt.Sprintf("part-%s-%d%s", executionId, n, ext)
}

// FileNameToExecutionId returns the execution id of a file named by [PartFileName]
func FileNameToExecutionId(filename string) (string, error) {
	filename = path.Base(filename)
	filename = strings.TrimSuffix(filename, path.Ext(filename))
	if !strings.HasPrefix(filename, "part-") {
		return "", fmt.Errorf("invalid filename %s", filename)
	}
	filename = strings.TrimPrefix(filename, "part-")
	lastDash := strings.LastIndex(filename, "-")
	if lastDash <= 0 {
		return "", fmt.Errorf("invalid filename %s", filename)
	}
	return filename[:lastDash], nil
}

// partitionDir returns the hive style directory <col>=<val>/... for the given columns
func partitionDir(columns []string, values map[string]*string) string {
	segments := make([]string, len(columns))
	for i, c := range columns {
		segments[i] = c + "=" + escapePartitionValue(values[c])
	}
	return strings.Join(segments, "/")
}

// escapePartitionValue percent-encodes characters which cannot appear in a hive partition directory
func escapePartitionValue(v *string) string {
	if v == nil || *v == "" {
		return HiveDefaultPartition
	}
	var sb strings.Builder
	for _, b := range []byte(*v) {
		if b < 0x20 || b == 0x7f || strings.IndexByte(`"#%'*/:=?\{[]^`, b) >= 0 {
			fmt.Fprintf(&sb, "%%%02X", b)
			continue
		}
		sb.WriteByte(b)
	}
	return sb.String()
}
