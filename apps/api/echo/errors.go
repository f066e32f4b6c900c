package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/challan/core"
	"github.com/trezcool/challan/core/invoice"
	"github.com/trezcool/challan/core/user"
	"github.com/trezcool/challan/storage/restapi"
)

var (
	errUnauthorized   = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errSessionExpired = echo.NewHTTPError(http.StatusUnauthorized, "Session expired. Please log in again.")
	errHttpForbidden  = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errEditLocked     = echo.NewHTTPError(http.StatusForbidden, "editing requires an active permission")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			message = core.TranslateErrors(origErr, core.Translator)
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else if apiErr, ok := origErr.Err.(*restapi.APIError); ok {
				message = apiErr.Message
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *restapi.APIError:
			code = origErr.StatusCode
			message = origErr.Message
			if code >= http.StatusInternalServerError {
				code = http.StatusBadGateway
				logger.Error("backend error", err, ctxUser(ctx))
			}
		default:
			switch {
			case errors.Is(err, core.ErrUnauthorized):
				code, message = http.StatusUnauthorized, errSessionExpired.Message
			case errors.Is(err, core.ErrForbidden):
				code, message = http.StatusForbidden, errHttpForbidden.Message
			case errors.Is(err, core.ErrNotFound):
				code, message = http.StatusNotFound, origErr.Error()
			case errors.Is(err, invoice.ErrPaymentInProgress):
				code, message = http.StatusConflict, invoice.ErrPaymentInProgress.Error()
			case errors.Is(err, invoice.ErrNothingToPrint):
				code, message = http.StatusUnprocessableEntity, invoice.ErrNothingToPrint.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg
				logger.Error(msg, errors.Wrap(err, msg), ctxUser(ctx))

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func ctxUser(ctx echo.Context) user.User {
	usr, _ := contextUser(ctx)
	return usr
}
