// Package record decodes stored webhook blobs into the canonical
// model.WebhookRecord shape. Historical writers used two field-casing
// conventions (lower-camel "receivedAt" and capitalized "ReceivedAt");
// the loader accepts both.
package record

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hookview/hookview/internal/model"
)

// ParseError reports that a single blob's content could not be decoded into
// a webhook record. The engine treats it as "skip this record".
type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("record %q: %v", e.Key, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load decodes one blob into a WebhookRecord. encoding/json matches field
// names case-insensitively, which covers both stored casing conventions with
// a single tag set. Optional maps default to empty, optional strings to "";
// only unparseable JSON or a missing id is an error.
func Load(key string, data []byte) (model.WebhookRecord, error) {
	var rec model.WebhookRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.WebhookRecord{}, &ParseError{Key: key, Err: err}
	}
	if rec.ID == "" {
		return model.WebhookRecord{}, &ParseError{Key: key, Err: fmt.Errorf("missing id field")}
	}

	rec.Method = strings.ToUpper(rec.Method)
	if rec.Headers == nil {
		rec.Headers = map[string]string{}
	}
	if rec.QueryParams == nil {
		rec.QueryParams = map[string]string{}
	}
	return rec, nil
}

// ConversationID extracts the nested conversation.id value from a record's
// raw body. The second return is false when the body is not JSON or the path
// is absent; such records never match a conversation filter.
func ConversationID(rawBody string) (string, bool) {
	var body struct {
		Conversation struct {
			ID string `json:"id"`
		} `json:"conversation"`
	}
	if err := json.Unmarshal([]byte(rawBody), &body); err != nil {
		return "", false
	}
	if body.Conversation.ID == "" {
		return "", false
	}
	return body.Conversation.ID, true
}
