package service

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"fsm-backup/lib/clients"
	"fsm-backup/lib/config"
	"fsm-backup/lib/constants"
	"fsm-backup/lib/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

//go:embed definitions/*.json
var widgetDefinitions embed.FS

const metricsNamespacePlaceholder = "<METRICS_NAMESPACE>"

// Logs Insights query: the newest 10000 log lines of the function, last 24 hours
const functionLogsURLTemplate = "https://%[1]s.console.aws.amazon.com/cloudwatch/home?region=%[1]s" +
	"#logsV2:logs-insights$3FqueryDetail$3D~(end~0~start~-86400~timeType~'RELATIVE~tz~'LOCAL~unit~'seconds~editorString~" +
	"'fields*20*40timestamp*2c*20*40message*2c*20*40logStream*2c*20*40log*0a*7c*20sort*20*40timestamp*20desc*0a*7c*20limit*2010000" +
	"~queryId~'%[2]s~source~(~'*2faws*2flambda*2f%[3]s))"

// DashboardService hands out short-lived image links for the backup dashboard widgets
type DashboardService struct {
	Config    *config.DashboardConfig
	Presigner clients.WidgetPresignerInterface
	Logger    *logrus.Logger

	widgets []models.WidgetDefinition
	logsURL string
}

// NewDashboardService loads the widget definitions once, with the bucket, function,
// region and API names filled in
func NewDashboardService(cfg *config.DashboardConfig, presigner clients.WidgetPresignerInterface, logger *logrus.Logger) (*DashboardService, error) {
	widgets, err := LoadWidgetDefinitions(widgetDefinitions, cfg)
	if err != nil {
		return nil, err
	}

	return &DashboardService{
		Config:    cfg,
		Presigner: presigner,
		Logger:    logger,
		widgets:   widgets,
		logsURL:   FunctionLogsURL(cfg.Region, cfg.FunctionName, uuid.NewString()),
	}, nil
}

// LoadWidgetDefinitions reads every definitions/*.json file of fsys. Widgets for the
// custom metrics namespace are left out when no namespace is configured.
func LoadWidgetDefinitions(fsys fs.FS, cfg *config.DashboardConfig) ([]models.WidgetDefinition, error) {
	entries, err := fs.ReadDir(fsys, "definitions")
	if err != nil {
		return nil, fmt.Errorf("failed to list widget definitions: %w", err)
	}

	replacer := strings.NewReplacer(
		"<BUCKET_NAME>", cfg.BucketName,
		"<FUNCTION_NAME>", cfg.FunctionName,
		"<REGION>", cfg.Region,
		"<API_NAME>", cfg.WebhookAPIName,
		metricsNamespacePlaceholder, cfg.MetricsNamespace,
	)

	var widgets []models.WidgetDefinition
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}

		content, err := fs.ReadFile(fsys, path.Join("definitions", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read widget definition %s: %w", entry.Name(), err)
		}
		if cfg.MetricsNamespace == "" && strings.Contains(string(content), metricsNamespacePlaceholder) {
			continue
		}

		widgets = append(widgets, models.WidgetDefinition{
			Name:       strings.TrimSuffix(entry.Name(), ".json"),
			MetricJSON: replacer.Replace(string(content)),
		})
	}
	return widgets, nil
}

// FunctionLogsURL links to a Logs Insights query over the function's log group
func FunctionLogsURL(region, functionName, queryID string) string {
	return fmt.Sprintf(functionLogsURLTemplate, region, queryID, functionName)
}

// Widgets returns the loaded widget definitions
func (s *DashboardService) Widgets() []models.WidgetDefinition {
	return s.widgets
}

// Links presigns every widget and adds the bucket name and the logs link
func (s *DashboardService) Links(ctx context.Context) (models.DashboardLinks, error) {
	expiry := constants.WIDGET_URL_EXPIRY_SECONDS * time.Second

	links := make(models.DashboardLinks, len(s.widgets)+2)
	for _, widget := range s.widgets {
		url, err := s.Presigner.PresignMetricWidget(ctx, widget.MetricJSON, expiry)
		if err != nil {
			return nil, fmt.Errorf("failed to presign widget %s: %w", widget.Name, err)
		}
		links[widget.Name+models.DashboardDiagramURLSuffix] = url
	}
	links[models.DashboardBucketNameKey] = s.Config.BucketName
	links[models.DashboardFunctionLogsKey] = s.logsURL

	s.Logger.WithFields(logrus.Fields{
		"operation":     "Links",
		"widgets_count": len(s.widgets),
	}).Info("Created dashboard links")
	return links, nil
}
