package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fsm-backup/lib/fsm"
	"fsm-backup/lib/models"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRuleCode = "Backup-attachments-to-aws-s3-fsm-backup-eu-central-1"

type ruleServer struct {
	*httptest.Server
	status   int
	response string
	requests []*http.Request
	bodies   []string
}

func newRuleServer(t *testing.T, response string) *ruleServer {
	rs := &ruleServer{status: http.StatusOK, response: response}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rs.requests = append(rs.requests, r)
		rs.bodies = append(rs.bodies, string(body))

		w.WriteHeader(rs.status)
		fmt.Fprint(w, rs.response)
	}))
	t.Cleanup(rs.Close)
	return rs
}

func newCustomRuleDao(rs *ruleServer) (*CustomRuleDao, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	return &CustomRuleDao{
		HTTPClient: rs.Client(),
		BaseURL:    rs.URL,
		RulePath:   "/api/data/v4/CustomRule",
		Logger:     logger,
	}, hook
}

func Test_FindRuleByCode_Found(t *testing.T) {
	//Arrange
	rs := newRuleServer(t, `{"data":[{"customRule":{"id":"OTHER","code":"Backup-attachments-to-aws-s3-fsm-backup"}},{"customRule":{"id":"R1","code":"`+testRuleCode+`"}}]}`)
	dao, _ := newCustomRuleDao(rs)

	//Act
	rule, err := dao.FindRuleByCode(context.Background(), testHeaders, testRuleCode)

	//Assert
	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.Equal(t, "R1", rule.ID)

	require.Len(t, rs.requests, 1)
	req := rs.requests[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/data/v4/CustomRule", req.URL.Path)
	assert.Equal(t, "CustomRule.9", req.URL.Query().Get("dtos"))
	assert.Equal(t, `code="`+testRuleCode+`"`, req.URL.Query().Get("query"))
	assert.Equal(t, "Bearer access-token", req.Header.Get("Authorization"))
}

func Test_FindRuleByCode_IgnoresStoredRuleShape(t *testing.T) {
	//Arrange
	rs := newRuleServer(t, `{"data":[{"customRule":{"id":"R1","code":"`+testRuleCode+`","enabled":"yes","actions":"unexpected","eventType":5,"lastChanged":1700000000000}}]}`)
	dao, _ := newCustomRuleDao(rs)

	//Act
	rule, err := dao.FindRuleByCode(context.Background(), testHeaders, testRuleCode)

	//Assert
	require.NoError(t, err)
	assert.Equal(t, &models.CustomRuleRef{ID: "R1", Code: testRuleCode}, rule)
}

func Test_FindRuleByCode_NotFound(t *testing.T) {
	//Arrange
	rs := newRuleServer(t, `{"data":[]}`)
	dao, _ := newCustomRuleDao(rs)

	//Act
	rule, err := dao.FindRuleByCode(context.Background(), testHeaders, testRuleCode)

	//Assert
	assert.NoError(t, err)
	assert.Nil(t, rule)
}

func Test_CreateRule_SendsKeyButLogsRedacted(t *testing.T) {
	//Arrange
	rs := newRuleServer(t, `{"data":[{"customRule":{"id":"NEW1","code":"`+testRuleCode+`"}}]}`)
	rs.status = http.StatusCreated
	dao, hook := newCustomRuleDao(rs)
	rule := models.NewAttachmentBackupRule(testRuleCode, "https://example.com/webhook", "super-secret-key")

	//Act
	created, err := dao.CreateRule(context.Background(), testHeaders, rule)

	//Assert
	require.NoError(t, err)
	assert.Equal(t, "NEW1", created.ID)
	assert.Equal(t, testRuleCode, created.Code)

	require.Len(t, rs.requests, 1)
	req := rs.requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "CustomRule.9", req.URL.Query().Get("dtos"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(rs.bodies[0]), &sent))
	assert.Equal(t, testRuleCode, sent["code"])
	assert.Contains(t, rs.bodies[0], `"value":"super-secret-key"`)

	for _, entry := range hook.AllEntries() {
		line, err := entry.String()
		require.NoError(t, err)
		assert.NotContains(t, line, "super-secret-key")
	}
	assert.Contains(t, fmt.Sprint(hook.AllEntries()[0].Data["rule"]), "XXXXXXXXX")
}

func Test_CreateRule_ClientErrorLogsBody(t *testing.T) {
	//Arrange
	rs := newRuleServer(t, `{"message":"code already exists"}`)
	rs.status = http.StatusConflict
	dao, hook := newCustomRuleDao(rs)

	//Act
	created, err := dao.CreateRule(context.Background(), testHeaders, models.NewAttachmentBackupRule(testRuleCode, "https://example.com/webhook", "key"))

	//Assert
	assert.Nil(t, created)
	var httpErr *fsm.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusConflict, httpErr.StatusCode)

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, "FSM data API returned an error", last.Message)
	assert.True(t, strings.Contains(fmt.Sprint(last.Data["response_body"]), "code already exists"))
}

func Test_FindRuleByCode_ServerErrorOmitsBody(t *testing.T) {
	//Arrange
	rs := newRuleServer(t, "stack trace")
	rs.status = http.StatusInternalServerError
	dao, hook := newCustomRuleDao(rs)

	//Act
	_, err := dao.FindRuleByCode(context.Background(), testHeaders, testRuleCode)

	//Assert
	require.Error(t, err)
	_, logged := hook.LastEntry().Data["response_body"]
	assert.False(t, logged)
}
