package ui

import (
	"fmt"
	"net/http"

	"donorviz/domain/association"
	"donorviz/internal/errors"
)

const snapshotHeaderName = "X-Snapshot-ID"

// errorBody is the JSON shape of every API error.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorResponse(err error) (int, errorBody) {
	body := errorBody{Code: errors.GetCode(err), Message: err.Error()}
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		body.Message = appErr.Message
	}
	return errors.HTTPStatus(err), body
}

// chartETag is stable for one selection of one loaded snapshot.
func chartETag(snapshotID string, sel association.SelectorState, variant string) string {
	return fmt.Sprintf(`"%s/%s/%s"`, snapshotID, sel.Key().String(), variant)
}

func notModified(r *http.Request, etag string) bool {
	return r.Header.Get("If-None-Match") == etag
}
