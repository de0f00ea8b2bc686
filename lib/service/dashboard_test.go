package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"fsm-backup/lib/config"
	"fsm-backup/lib/models"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPresigner struct {
	calls   []string
	expiry  time.Duration
	failFor string
}

func (m *mockPresigner) PresignMetricWidget(ctx context.Context, widgetJSON string, expiry time.Duration) (string, error) {
	m.calls = append(m.calls, widgetJSON)
	m.expiry = expiry
	if m.failFor != "" && strings.Contains(widgetJSON, m.failFor) {
		return "", errors.New("no credentials")
	}
	return fmt.Sprintf("https://monitoring.eu-central-1.amazonaws.com/?X-Amz-Signature=%d", len(m.calls)), nil
}

func testDashboardConfig() *config.DashboardConfig {
	return &config.DashboardConfig{
		Region:         "eu-central-1",
		BucketName:     "fsm-backup-bucket",
		FunctionName:   "fsm-backup-attachment",
		WebhookAPIName: "FSM Webhook Service",
	}
}

func Test_LoadWidgetDefinitions_ReplacesPlaceholders(t *testing.T) {
	//Arrange
	fsys := fstest.MapFS{
		"definitions/bucket.json": {Data: []byte(`{"metrics":[["AWS/S3","NumberOfObjects","BucketName","<BUCKET_NAME>"]],"region":"<REGION>"}`)},
		"definitions/notes.txt":   {Data: []byte("ignored")},
	}

	//Act
	widgets, err := LoadWidgetDefinitions(fsys, testDashboardConfig())

	//Assert
	require.NoError(t, err)
	require.Len(t, widgets, 1)
	assert.Equal(t, "bucket", widgets[0].Name)
	assert.Equal(t, `{"metrics":[["AWS/S3","NumberOfObjects","BucketName","fsm-backup-bucket"]],"region":"eu-central-1"}`, widgets[0].MetricJSON)
}

func Test_LoadWidgetDefinitions_SkipsCustomMetricsWithoutNamespace(t *testing.T) {
	//Arrange
	fsys := fstest.MapFS{
		"definitions/custom.json": {Data: []byte(`{"metrics":[["<METRICS_NAMESPACE>","AttachmentsBackedUp"]]}`)},
		"definitions/lambda.json": {Data: []byte(`{"metrics":[["AWS/Lambda","Errors","FunctionName","<FUNCTION_NAME>"]]}`)},
	}
	cfg := testDashboardConfig()

	//Act
	withoutNamespace, err := LoadWidgetDefinitions(fsys, cfg)
	require.NoError(t, err)

	cfg.MetricsNamespace = "FsmBackup"
	withNamespace, err := LoadWidgetDefinitions(fsys, cfg)
	require.NoError(t, err)

	//Assert
	require.Len(t, withoutNamespace, 1)
	assert.Equal(t, "lambda", withoutNamespace[0].Name)
	require.Len(t, withNamespace, 2)
	assert.Contains(t, withNamespace[0].MetricJSON, `"FsmBackup"`)
}

func Test_NewDashboardService_LoadsEmbeddedDefinitions(t *testing.T) {
	//Arrange
	logger, _ := logtest.NewNullLogger()

	//Act
	svc, err := NewDashboardService(testDashboardConfig(), &mockPresigner{}, logger)

	//Assert
	require.NoError(t, err)
	names := make([]string, 0, len(svc.Widgets()))
	for _, widget := range svc.Widgets() {
		names = append(names, widget.Name)
		assert.NotContains(t, widget.MetricJSON, "<")
	}
	assert.ElementsMatch(t, []string{
		"lambdaFnErrors",
		"lambdaFnInvocations",
		"s3BucketSizeBytes",
		"s3ObjectCount",
		"webHookInvocations",
	}, names)
}

func Test_Links_PresignsEveryWidget(t *testing.T) {
	//Arrange
	logger, _ := logtest.NewNullLogger()
	presigner := &mockPresigner{}
	svc, err := NewDashboardService(testDashboardConfig(), presigner, logger)
	require.NoError(t, err)

	//Act
	links, err := svc.Links(context.Background())

	//Assert
	require.NoError(t, err)
	assert.Len(t, presigner.calls, len(svc.Widgets()))
	assert.Equal(t, 60*time.Second, presigner.expiry)
	assert.Len(t, links, len(svc.Widgets())+2)
	for _, widget := range svc.Widgets() {
		assert.NotEmpty(t, links[widget.Name+models.DashboardDiagramURLSuffix])
	}
	assert.Equal(t, "fsm-backup-bucket", links[models.DashboardBucketNameKey])
	assert.True(t, strings.HasPrefix(links[models.DashboardFunctionLogsKey], "https://eu-central-1.console.aws.amazon.com/cloudwatch/home?region=eu-central-1#logsV2:logs-insights"))
}

func Test_Links_PresignFailure(t *testing.T) {
	//Arrange
	logger, _ := logtest.NewNullLogger()
	presigner := &mockPresigner{failFor: "AWS/Lambda"}
	svc, err := NewDashboardService(testDashboardConfig(), presigner, logger)
	require.NoError(t, err)

	//Act
	links, err := svc.Links(context.Background())

	//Assert
	assert.Error(t, err)
	assert.Nil(t, links)
}

func Test_FunctionLogsURL(t *testing.T) {
	//Act
	url := FunctionLogsURL("us-east-1", "backup-fn", "0d3c1c4e-query")

	//Assert
	assert.Equal(t, "https://us-east-1.console.aws.amazon.com/cloudwatch/home?region=us-east-1"+
		"#logsV2:logs-insights$3FqueryDetail$3D~(end~0~start~-86400~timeType~'RELATIVE~tz~'LOCAL~unit~'seconds~editorString~"+
		"'fields*20*40timestamp*2c*20*40message*2c*20*40logStream*2c*20*40log*0a*7c*20sort*20*40timestamp*20desc*0a*7c*20limit*2010000"+
		"~queryId~'0d3c1c4e-query~source~(~'*2faws*2flambda*2fbackup-fn))", url)
}
