package handlers

import (
	"net/http"

	"flowbuilder/pkg/common"
	pkgerrors "flowbuilder/pkg/errors"

	"go.uber.org/zap"
)

// respondError maps an application error onto the standard error envelope.
// Unknown errors are logged and reported as internal without leaking detail.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		code := appErr.Code
		if code == "" {
			code = string(appErr.Type)
		}
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		common.RespondError(w, status, code, appErr.Message)
		return
	}

	if logger != nil {
		logger.Error("Unhandled error", zap.Error(err))
	}
	common.RespondError(w, http.StatusInternalServerError,
		common.StandardErrorCodes.InternalError, "An unexpected error occurred")
}

// respondBadRequest reports a malformed or invalid request body
func respondBadRequest(w http.ResponseWriter, message string) {
	common.RespondError(w, http.StatusBadRequest,
		common.StandardErrorCodes.BadRequest, message)
}
