package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophdocs/internal/common"
)

type errorBody struct {
	Error struct {
		Code       string `json:"code"`
		Message    string `json:"message"`
		DocumentID string `json:"documentId"`
		UserID     string `json:"userId"`
		Status     string `json:"status"`
	} `json:"error"`
}

var kindByCode = map[string]error{
	"VALIDATION_ERROR": common.ErrValidation,
	"NOT_FOUND":        common.ErrNotFound,
	"FORBIDDEN":        common.ErrUnauthorized,
	"INVALID_STATE":    common.ErrInvalidState,
	"TRANSIENT_IO":     common.ErrTransientIO,
	"UNAUTHORIZED":     common.ErrInvalidToken,
}

// decodeError turns a non-200 response into a classified error. Bodies that
// are not ours fall back to the status code: 5xx is transient.
func decodeError(op string, resp *http.Response) error {
	var body errorBody
	_ = json.NewDecoder(resp.Body).Decode(&body)

	kind, ok := kindByCode[body.Error.Code]
	if !ok {
		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			kind = common.ErrInvalidToken
		case resp.StatusCode >= http.StatusInternalServerError:
			kind = common.ErrTransientIO
		default:
			kind = errors.New(resp.Status)
		}
	}

	msg := body.Error.Message
	if msg == "" {
		msg = resp.Status
	}
	return &common.Error{
		Kind:       kind,
		Op:         op,
		DocumentID: body.Error.DocumentID,
		UserID:     body.Error.UserID,
		Status:     body.Error.Status,
		Err:        errors.New(msg),
	}
}
