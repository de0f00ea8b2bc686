package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

const (
	allowHeaders = "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token"
	allowMethods = "GET,OPTIONS"
)

func responseHeaders(origin string) map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  origin,
		"Access-Control-Allow-Headers": allowHeaders,
		"Access-Control-Allow-Methods": allowMethods,
	}
}

// AllowedOrigin matches the request Origin header against the allowed origins.
// "*" allows any origin. Requests without an Origin header are not cross-origin and
// get "*" back.
func AllowedOrigin(request events.APIGatewayProxyRequest, allowedOrigins []string) (string, bool) {
	var requestOrigin string
	for name, value := range request.Headers {
		if strings.EqualFold(name, "origin") {
			requestOrigin = value
			break
		}
	}
	if requestOrigin == "" {
		return "*", true
	}

	for _, allowedOrigin := range allowedOrigins {
		if allowedOrigin == "*" || allowedOrigin == requestOrigin {
			return requestOrigin, true
		}
	}
	return "", false
}

// PreflightResponse answers a CORS preflight request for origin
func PreflightResponse(origin string) events.APIGatewayProxyResponse {
	headers := responseHeaders(origin)
	delete(headers, "Content-Type")
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers,
	}
}

// SuccessResponse creates a successful API Gateway response
func SuccessResponse(statusCode int, data interface{}, origin string, logger *logrus.Logger) events.APIGatewayProxyResponse {
	body, err := json.Marshal(data)
	if err != nil {
		logger.WithError(err).Error("Failed to marshal response data")
		return ErrorResponse(http.StatusInternalServerError, "Internal server error", origin, logger)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Body:       string(body),
		Headers:    responseHeaders(origin),
	}
}

// ErrorResponse creates an error API Gateway response
func ErrorResponse(statusCode int, message string, origin string, logger *logrus.Logger) events.APIGatewayProxyResponse {
	errorData := map[string]interface{}{
		"error":   true,
		"message": message,
		"status":  statusCode,
	}

	body, err := json.Marshal(errorData)
	if err != nil {
		logger.WithError(err).Error("Failed to marshal error response")
		body = []byte(`{"error":true,"message":"Internal server error","status":500}`)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Body:       string(body),
		Headers:    responseHeaders(origin),
	}
}
