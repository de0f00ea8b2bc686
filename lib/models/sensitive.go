package models

import (
	"encoding/json"

	"fsm-backup/lib/constants"
)

// Sensitive holds a credential value (access token, client secret, API key).
// Every printable or JSON form of it is the redaction placeholder; the raw value
// is only reachable through Reveal, which callers use when building a request.
type Sensitive string

// Reveal returns the raw value for transmission. Never pass the result to a logger.
func (s Sensitive) Reveal() string {
	return string(s)
}

func (s Sensitive) String() string {
	if s == "" {
		return ""
	}
	return constants.REDACTED_PLACEHOLDER
}

func (s Sensitive) GoString() string {
	return s.String()
}

func (s Sensitive) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Sensitive) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*s = Sensitive(value)
	return nil
}
