package handling

import (
	"catalog_server/lib"
	"catalog_server/structs"
	"errors"
	"net/http"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/render"
)

// HandleError writes err as {"status":"error","message":...} with the status it maps to.
// Server errors are logged and their details withheld from the client.
func HandleError(err error, msg string, logger *gecho.Logger, w http.ResponseWriter, r *http.Request) {
	status := lib.StatusCode(err)
	body := structs.ErrorResponse{Status: "error", Message: err.Error()}

	if status >= http.StatusInternalServerError {
		logger.Error("An error occurred", gecho.Field("error", err), gecho.Field("msg", msg), gecho.WithCallerSkip(3))
		body.Message = http.StatusText(http.StatusInternalServerError)
	}

	var ve *lib.ValidationError
	if errors.As(err, &ve) {
		body.Errors = ve.Errors
	}

	WriteJSON(w, r, status, body)
}

// WriteError writes a plain error envelope.
func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSON(w, r, status, structs.ErrorResponse{Status: "error", Message: message})
}

func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}
