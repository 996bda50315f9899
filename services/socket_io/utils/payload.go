package socketio_utils

import (
	"Wordrush/utils/apperrors"
	"encoding/json"

	"github.com/gin-gonic/gin/binding"
)

// DecodePayload maps the first event argument onto dst and validates it
// with its `binding` tags. Clients may send either an object or its JSON
// encoding as a string.
func DecodePayload(args []any, dst any) error {
	if len(args) < 1 || args[0] == nil {
		return apperrors.Validation("Missing payload")
	}

	var raw []byte
	if s, ok := args[0].(string); ok {
		raw = []byte(s)
	} else {
		var err error
		if raw, err = json.Marshal(args[0]); err != nil {
			return apperrors.Validation("Malformed payload")
		}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperrors.Validation("Malformed payload")
	}
	if err := binding.Validator.ValidateStruct(dst); err != nil {
		return apperrors.FromBinding(err)
	}
	return nil
}
