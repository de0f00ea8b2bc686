// Package main implements the dashboard Lambda function behind the FSM web UI
// extension. It returns short-lived links to CloudWatch metric images for the
// backup bucket, the backup function and the webhook API.
package main

import (
	"context"
	"net/http"

	"fsm-backup/lib/api"
	"fsm-backup/lib/auth"
	"fsm-backup/lib/clients"
	"fsm-backup/lib/config"
	"fsm-backup/lib/data"
	"fsm-backup/lib/service"
	"fsm-backup/lib/util"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

// Global variables for Lambda cold start optimization
var (
	logger           *logrus.Logger
	dashboardConfig  *config.DashboardConfig
	dashboardService *service.DashboardService
)

// Handler processes GET requests for the dashboard links
func Handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log := logger.WithFields(logrus.Fields{
		"method":    request.HTTPMethod,
		"path":      request.Path,
		"operation": "Handler",
	})

	// the FSM token authorizer passes the caller on; direct invocations have no claims
	if claims, err := auth.ExtractClaimsFromRequest(request); err == nil {
		log = log.WithFields(logrus.Fields{
			"user_id":    claims.UserID,
			"account_id": claims.AccountID,
		})
	}
	log.Debug("Processing dashboard request")

	origin, allowed := api.AllowedOrigin(request, dashboardConfig.Origins())
	if !allowed {
		log.WithField("headers", request.Headers).Warn("Unauthorized origin")
		return api.ErrorResponse(http.StatusBadRequest, "Origin not allowed", "null", logger), nil
	}

	switch request.HTTPMethod {
	case http.MethodOptions:
		return api.PreflightResponse(origin), nil
	case http.MethodGet, "":
	default:
		return api.ErrorResponse(http.StatusMethodNotAllowed, "Method not allowed", origin, logger), nil
	}

	links, err := dashboardService.Links(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to create dashboard links")
		return api.ErrorResponse(http.StatusInternalServerError, "Failed to create dashboard links", origin, logger), nil
	}

	return api.SuccessResponse(http.StatusOK, links, origin, logger), nil
}

func init() {
	ctx := context.Background()

	runtime, err := config.LoadRuntime()
	if err != nil {
		logrus.WithError(err).Fatal("Error loading runtime configuration")
	}

	// Logger Setup
	logger = util.NewLogger(runtime.IsLocal, runtime.LogLevel)

	awsCfg, err := clients.NewAWSConfig(ctx, runtime)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "init",
			"error":     err.Error(),
		}).Fatal("Error loading AWS configuration")
	}

	var params config.ParameterSource
	if runtime.SSMParameterPath != "" {
		params = &data.SSMDao{
			SSM:    clients.NewSSMClient(awsCfg),
			Path:   runtime.SSMParameterPath,
			Logger: logger,
		}
	}
	es, err := config.Environ(ctx, params)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "init",
			"error":     err.Error(),
		}).Fatal("Error while getting SSM params from parameter store")
	}

	dashboardConfig, err = config.LoadDashboard(es)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "init",
			"error":     err.Error(),
		}).Fatal("Error loading dashboard configuration")
	}

	dashboardService, err = service.NewDashboardService(dashboardConfig, clients.NewWidgetPresigner(awsCfg), logger)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"operation": "init",
			"error":     err.Error(),
		}).Fatal("Error loading widget definitions")
	}

	logger.WithFields(logrus.Fields{
		"operation":     "init",
		"widgets_count": len(dashboardService.Widgets()),
	}).Info("Dashboard service initialized successfully")
}

func main() {
	lambda.Start(Handler)
}
