package httpapi

import (
	"errors"
	"net/http"
	"time"

	"flashflow/internal/domain/video"
	"flashflow/internal/ports"
	"flashflow/internal/usecase/pipeline"
)

// mapError translates usecase/domain errors into the wire taxonomy. The
// message is the error text; details carry the structured fields the UI
// renders ("locked by X until ...", "cannot go A -> B").
func mapError(err error) (int, string, map[string]any) {
	var denied *video.TransitionDeniedError
	if errors.As(err, &denied) {
		details := map[string]any{
			"current_status":   string(denied.Current),
			"requested_status": string(denied.Requested),
		}
		if len(denied.Missing) > 0 {
			details["missing_fields"] = denied.Missing
			return http.StatusBadRequest, CodeMissingRequiredField, details
		}
		return http.StatusConflict, CodeInvalidTransition, details
	}

	var claimConflict *video.ClaimConflictError
	if errors.As(err, &claimConflict) {
		details := map[string]any{}
		if claimConflict.HeldBy != "" {
			details["claimed_by"] = claimConflict.HeldBy
		}
		if claimConflict.ExpiresAt != nil {
			details["claim_expires_at"] = claimConflict.ExpiresAt.UTC().Format(time.RFC3339Nano)
		}

		code := CodeConflict
		switch {
		case errors.Is(err, video.ErrAlreadyClaimed):
			code = CodeAlreadyClaimed
		case errors.Is(err, video.ErrClaimedByOther):
			code = CodeClaimedByOther
		case errors.Is(err, video.ErrLockedByOther):
			code = CodeLockedByOther
		}
		return http.StatusConflict, code, details
	}

	switch {
	case errors.Is(err, ports.ErrVideoNotFound):
		return http.StatusNotFound, CodeNotFound, nil
	case errors.Is(err, video.ErrNotClaimed):
		return http.StatusConflict, CodeNotClaimed, nil
	case errors.Is(err, ports.ErrClaimConflict):
		return http.StatusConflict, CodeConflict, nil
	case errors.Is(err, video.ErrStatusRequired),
		errors.Is(err, video.ErrInvalidStatus),
		errors.Is(err, pipeline.ErrTitleRequired),
		errors.Is(err, pipeline.ErrScriptTextRequired):
		return http.StatusBadRequest, CodeValidationError, nil
	case errors.Is(err, pipeline.ErrActorRequired):
		return http.StatusUnauthorized, CodeUnauthorized, nil
	default:
		return http.StatusInternalServerError, CodeInternal, nil
	}
}
