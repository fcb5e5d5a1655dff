package handler

import (
	"errors"
	"io"
	"net/http"

	dErrors "voterdata/pkg/domain-errors"
	"voterdata/pkg/platform/httputil"
	"voterdata/pkg/platform/middleware/request"
)

// multipartOverhead covers boundaries and part headers around the file.
const multipartOverhead = 1 << 20

const uploadField = "file"

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	maxBytes := h.importer.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)

	if err := r.ParseMultipartForm(maxBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, dErrors.New(dErrors.CodePayloadTooLarge, "file exceeds the upload size limit"))
			return
		}
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "expected multipart/form-data with a file field"))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read uploaded file",
			"error", err,
			"request_id", request.GetRequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unable to read uploaded file"))
		return
	}

	result, err := h.importer.Import(ctx, header.Filename, data)
	if err != nil {
		h.logFailure(r, "spreadsheet import failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUploadResponse(result))
}
