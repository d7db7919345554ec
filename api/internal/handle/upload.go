package handle

import (
	"errors"
	"io"
	"net/http"

	"math-solver/api/internal/imagecodec"
)

type UploadResponse struct {
	ImageBase64 string `json:"image_base64"`
	Filename    string `json:"filename"`
}

// UploadImage converts a multipart "file" field to PNG base64. No inference is done.
func (h *Handle) UploadImage(w http.ResponseWriter, r *http.Request) {
	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Error processing image: "+err.Error())
		return
	}
	defer file.Close()

	if err := imagecodec.CheckContentType(hdr.Header.Get("Content-Type")); err != nil {
		if errors.Is(err, imagecodec.ErrNotImage) {
			writeError(w, r, http.StatusBadRequest, "File must be an image")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "Error processing image: "+err.Error())
		return
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Error processing image: "+err.Error())
		return
	}
	b64, err := imagecodec.ToPNGBase64(raw)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Error processing image: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{ImageBase64: b64, Filename: hdr.Filename})
}
