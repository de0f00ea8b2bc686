package constants

// Environment variable names
const (
	API_KEY_ID      = "API_KEY_ID"
	API_WEBHOOK_URL = "API_WEBHOOK_URL"
	IS_LOCAL        = "IS_LOCAL"
)

const (
	DEFAULT_KEY_PREFIX = "uploads/"

	// Subtracted from expires_in so a token is never used right at its expiry
	TOKEN_EXPIRY_SAFETY_MARGIN = 10 // seconds

	CUSTOM_RULE_DTO_VERSION = "CustomRule.9"
	RULE_CODE_PREFIX        = "Backup-attachments-to-aws-s3"
	RULE_NAME               = "s3-backup-rule"
	RULE_DESCRIPTION        = "This BR invokes your webhook on AWS, to back up new attachments to Amazon S3"

	ATTACHMENT_CREATED        = "AttachmentCreated"
	ATTACHMENT_ID_PLACEHOLDER = "{attachment_id}"

	REDACTED_PLACEHOLDER = "XXXXXXXXX"

	WIDGET_URL_EXPIRY_SECONDS = 60
	WIDGET_OUTPUT_FORMAT      = "image/png"
)

// FSM request headers
const (
	HEADER_ACCOUNT_ID     = "X-Account-ID"
	HEADER_COMPANY_ID     = "X-Company-ID"
	HEADER_CLIENT_ID      = "X-Client-ID"
	HEADER_CLIENT_VERSION = "X-Client-Version"
	HEADER_API_KEY        = "x-api-key"
)
