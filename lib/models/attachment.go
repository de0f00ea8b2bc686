package models

import (
	"encoding/json"
	"fmt"
	"mime"

	"fsm-backup/lib/constants"
)

// AttachmentDetail is the payload FSM sends when an attachment is created.
// Every field is rendered by FSM from the business rule body template.
type AttachmentDetail struct {
	ID                         string `json:"id"`
	AttachmentID               string `json:"attachmentId"`
	FileName                   string `json:"fileName"`
	Description                string `json:"description"`
	Type                       string `json:"type"`
	LastChanged                string `json:"lastChanged"`
	LastChangedByClientVersion string `json:"lastChangedByClientVersion"`
	CreatePerson               string `json:"createPerson"`
	CreateDateTime             string `json:"createDateTime"`
	LastChangedBy              string `json:"lastChangedBy"`
}

// AttachmentEvent is the inbound event. Events routed through EventBridge spell the
// type field "detail-type"; the raw webhook body uses "detailType".
type AttachmentEvent struct {
	DetailType string           `json:"detailType"`
	Detail     AttachmentDetail `json:"detail"`
}

func (e *AttachmentEvent) UnmarshalJSON(data []byte) error {
	var raw struct {
		DetailType         string           `json:"detailType"`
		EventBridgeDetType string           `json:"detail-type"`
		Detail             AttachmentDetail `json:"detail"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.DetailType = raw.DetailType
	if e.DetailType == "" {
		e.DetailType = raw.EventBridgeDetType
	}
	e.Detail = raw.Detail
	return nil
}

// Validate checks the fields the backup needs to locate and store the file
func (e AttachmentEvent) Validate() error {
	if e.DetailType != "" && e.DetailType != constants.ATTACHMENT_CREATED {
		return fmt.Errorf("unsupported detail type: %s", e.DetailType)
	}
	if e.Detail.ID == "" || e.Detail.AttachmentID == "" || e.Detail.FileName == "" {
		return fmt.Errorf("attachment event is missing id, attachmentId or fileName")
	}
	return nil
}

// BackupKey returns the object key for the attachment: {prefix}{id}/{fileName}
func (d AttachmentDetail) BackupKey(prefix string) string {
	return fmt.Sprintf("%s%s/%s", prefix, d.ID, d.FileName)
}

// MaxMetadataSize is the S3 limit on user-defined metadata, counted over keys and values
const MaxMetadataSize = 2048

// metadataDropOrder lists the fields given up, in order, when the metadata is too large
var metadataDropOrder = []string{
	"description",
	"lastChangedBy",
	"createPerson",
	"lastChangedByClientVersion",
	"lastChanged",
	"createDateTime",
	"type",
}

// Metadata flattens the detail into object metadata, keyed by the JSON field names.
// Values outside printable ASCII are RFC 2047 Q-encoded.
func (d AttachmentDetail) Metadata() map[string]string {
	fields := map[string]string{
		"id":                         d.ID,
		"attachmentId":               d.AttachmentID,
		"fileName":                   d.FileName,
		"description":                d.Description,
		"type":                       d.Type,
		"lastChanged":                d.LastChanged,
		"lastChangedByClientVersion": d.LastChangedByClientVersion,
		"createPerson":               d.CreatePerson,
		"createDateTime":             d.CreateDateTime,
		"lastChangedBy":              d.LastChangedBy,
	}

	metadata := make(map[string]string, len(fields))
	for key, value := range fields {
		if value != "" {
			metadata[key] = mime.QEncoding.Encode("utf-8", value)
		}
	}

	for _, key := range metadataDropOrder {
		if metadataSize(metadata) <= MaxMetadataSize {
			break
		}
		delete(metadata, key)
	}
	return metadata
}

func metadataSize(metadata map[string]string) int {
	size := 0
	for key, value := range metadata {
		size += len(key) + len(value)
	}
	return size
}
