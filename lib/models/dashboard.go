package models

// WidgetDefinition is one CloudWatch metric widget rendered as a diagram
type WidgetDefinition struct {
	Name       string
	MetricJSON string
}

// DashboardLinks is the response body of the dashboard function:
// one "<name>DiagramUrl" entry per widget plus s3BucketName and functionLogsUrl.
type DashboardLinks map[string]string

const (
	DashboardDiagramURLSuffix = "DiagramUrl"
	DashboardBucketNameKey    = "s3BucketName"
	DashboardFunctionLogsKey  = "functionLogsUrl"
)

// BackupMetrics describes one successful backup for metric emission
type BackupMetrics struct {
	Bucket string
	Bytes  int64
}
