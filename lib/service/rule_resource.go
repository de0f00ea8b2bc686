package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

// RuleEnsurer registers the deployment's business rule
type RuleEnsurer interface {
	RuleCode() string
	EnsureRuleRegistered(ctx context.Context) (*Registration, error)
}

// RuleResourceHandler serves the custom rule Lambda. It answers CloudFormation custom
// resource requests and EventBridge secret-change events.
type RuleResourceHandler struct {
	Registrar RuleEnsurer
	Logger    *logrus.Logger
}

// Handle accepts a CloudFormation custom resource request or an EventBridge event
func (h *RuleResourceHandler) Handle(ctx context.Context, payload json.RawMessage) (*Registration, error) {
	var envelope struct {
		RequestType string `json:"RequestType"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}

	if envelope.RequestType != "" {
		var event cfn.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("failed to decode custom resource event: %w", err)
		}
		reason, err := cfn.LambdaWrap(h.HandleCustomResource)(ctx, event)
		if err != nil {
			h.Logger.WithFields(logrus.Fields{
				"operation": "Handle",
				"reason":    reason,
				"error":     err.Error(),
			}).Error("Failed to respond to CloudFormation")
		}
		return nil, err
	}

	var event events.CloudWatchEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to decode EventBridge event: %w", err)
	}
	h.Logger.WithFields(logrus.Fields{
		"operation":   "Handle",
		"source":      event.Source,
		"detail_type": event.DetailType,
		"resources":   event.Resources,
	}).Info("Secret changed, ensuring business rule")

	return h.Registrar.EnsureRuleRegistered(ctx)
}

// HandleCustomResource registers the rule on Create and Update. The rule is left in
// place on Delete so attachments keep being forwarded until it is removed in FSM.
func (h *RuleResourceHandler) HandleCustomResource(ctx context.Context, event cfn.Event) (string, map[string]interface{}, error) {
	physicalResourceID := h.Registrar.RuleCode()
	log := h.Logger.WithFields(logrus.Fields{
		"operation":    "HandleCustomResource",
		"request_type": event.RequestType,
		"stack_id":     event.StackID,
	})

	if event.RequestType == cfn.RequestDelete {
		log.Info("Delete requested, keeping business rule")
		return physicalResourceID, nil, nil
	}

	registration, err := h.Registrar.EnsureRuleRegistered(ctx)
	if err != nil {
		log.WithError(err).Error("Business rule registration failed")
		return physicalResourceID, nil, err
	}

	return physicalResourceID, map[string]interface{}{
		"RuleId":   registration.Rule.ID,
		"RuleCode": registration.Rule.Code,
		"Created":  registration.Created,
	}, nil
}
