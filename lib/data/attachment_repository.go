package data

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"fsm-backup/lib/clients"
	"fsm-backup/lib/constants"
	"fsm-backup/lib/fsm"

	"github.com/sirupsen/logrus"
)

// AttachmentRepository reads attachment content from FSM
type AttachmentRepository interface {
	// FetchAttachment returns the content stream; the caller closes it.
	// A missing attachment yields an *fsm.HTTPError with status 404.
	FetchAttachment(ctx context.Context, headers fsm.Headers, attachmentID string) (io.ReadCloser, error)
}

// AttachmentDao implements AttachmentRepository against the FSM attachment service.
// PathTemplate contains the {attachment_id} placeholder.
type AttachmentDao struct {
	HTTPClient   clients.HTTPClientInterface
	BaseURL      string
	PathTemplate string
	Logger       *logrus.Logger
}

func (dao *AttachmentDao) AttachmentURL(attachmentID string) string {
	return dao.BaseURL + strings.ReplaceAll(dao.PathTemplate, constants.ATTACHMENT_ID_PLACEHOLDER, url.PathEscape(attachmentID))
}

func (dao *AttachmentDao) FetchAttachment(ctx context.Context, headers fsm.Headers, attachmentID string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dao.AttachmentURL(attachmentID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build attachment request: %w", err)
	}
	headers.Apply(req)

	resp, err := dao.HTTPClient.Do(req)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"operation":     "FetchAttachment",
			"attachment_id": attachmentID,
			"error":         err.Error(),
		}).Error("Failed to reach FSM attachment service")
		return nil, fmt.Errorf("failed to fetch attachment %s: %w", attachmentID, err)
	}

	if !fsm.IsSuccess(resp.StatusCode) {
		defer resp.Body.Close()
		return nil, fsm.NewHTTPError("fetch attachment", resp)
	}

	return resp.Body, nil
}
