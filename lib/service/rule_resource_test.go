package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fsm-backup/lib/models"

	"github.com/aws/aws-lambda-go/cfn"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRuleEnsurer struct {
	registration *Registration
	err          error
	calls        int
}

func (m *mockRuleEnsurer) RuleCode() string {
	return "FSMBACKUP-STACK-EU"
}

func (m *mockRuleEnsurer) EnsureRuleRegistered(ctx context.Context) (*Registration, error) {
	m.calls++
	return m.registration, m.err
}

func newRuleResourceHandler(ensurer *mockRuleEnsurer) *RuleResourceHandler {
	logger, _ := logtest.NewNullLogger()
	return &RuleResourceHandler{Registrar: ensurer, Logger: logger}
}

func Test_HandleCustomResource_DeleteKeepsRule(t *testing.T) {
	//Arrange
	ensurer := &mockRuleEnsurer{}
	handler := newRuleResourceHandler(ensurer)

	//Act
	id, data, err := handler.HandleCustomResource(context.Background(), cfn.Event{RequestType: cfn.RequestDelete})

	//Assert
	require.NoError(t, err)
	assert.Equal(t, "FSMBACKUP-STACK-EU", id)
	assert.Nil(t, data)
	assert.Equal(t, 0, ensurer.calls)
}

func Test_HandleCustomResource_CreateReturnsRuleData(t *testing.T) {
	//Arrange
	ensurer := &mockRuleEnsurer{registration: &Registration{
		Rule:    &models.CustomRuleRef{ID: "A1B2C3", Code: "FSMBACKUP-STACK-EU"},
		Created: true,
	}}
	handler := newRuleResourceHandler(ensurer)

	//Act
	id, data, err := handler.HandleCustomResource(context.Background(), cfn.Event{RequestType: cfn.RequestCreate})

	//Assert
	require.NoError(t, err)
	assert.Equal(t, "FSMBACKUP-STACK-EU", id)
	assert.Equal(t, "A1B2C3", data["RuleId"])
	assert.Equal(t, true, data["Created"])
	assert.Equal(t, 1, ensurer.calls)
}

func Test_HandleCustomResource_CreateFailureKeepsPhysicalID(t *testing.T) {
	//Arrange
	ensurer := &mockRuleEnsurer{err: errors.New("fsm unavailable")}
	handler := newRuleResourceHandler(ensurer)

	//Act
	id, data, err := handler.HandleCustomResource(context.Background(), cfn.Event{RequestType: cfn.RequestCreate})

	//Assert
	assert.ErrorContains(t, err, "fsm unavailable")
	assert.Equal(t, "FSMBACKUP-STACK-EU", id)
	assert.Nil(t, data)
}

func Test_Handle_EventBridgeEnsuresRule(t *testing.T) {
	//Arrange
	ensurer := &mockRuleEnsurer{registration: &Registration{Rule: &models.CustomRuleRef{ID: "A1B2C3"}}}
	handler := newRuleResourceHandler(ensurer)
	payload := json.RawMessage(`{"source":"aws.secretsmanager","detail-type":"AWS API Call via CloudTrail","resources":[]}`)

	//Act
	registration, err := handler.Handle(context.Background(), payload)

	//Assert
	require.NoError(t, err)
	assert.Equal(t, "A1B2C3", registration.Rule.ID)
	assert.Equal(t, 1, ensurer.calls)
}

func Test_Handle_CustomResourceReportsFailureToCloudFormation(t *testing.T) {
	//Arrange
	var response struct {
		Status             string `json:"Status"`
		PhysicalResourceID string `json:"PhysicalResourceId"`
		Reason             string `json:"Reason"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&response)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ensurer := &mockRuleEnsurer{err: errors.New("fsm unavailable")}
	handler := newRuleResourceHandler(ensurer)
	payload, err := json.Marshal(cfn.Event{
		RequestType:       cfn.RequestCreate,
		RequestID:         "req-1",
		ResponseURL:       server.URL,
		StackID:           "arn:aws:cloudformation:eu-west-1:123:stack/stack/1",
		LogicalResourceID: "BusinessRule",
	})
	require.NoError(t, err)

	//Act
	registration, err := handler.Handle(context.Background(), payload)

	//Assert
	require.NoError(t, err)
	assert.Nil(t, registration)
	assert.Equal(t, "FAILED", response.Status)
	assert.Equal(t, "FSMBACKUP-STACK-EU", response.PhysicalResourceID)
	assert.Equal(t, "fsm unavailable", response.Reason)
	assert.Equal(t, 1, ensurer.calls)
}

func Test_Handle_RejectsMalformedPayload(t *testing.T) {
	handler := newRuleResourceHandler(&mockRuleEnsurer{})

	_, err := handler.Handle(context.Background(), json.RawMessage(`not json`))

	assert.ErrorContains(t, err, "failed to decode event")
}
