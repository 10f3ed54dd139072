// Package handler maps HTTP requests onto the service layer.  Every
// response uses the uniform envelope {success, message|error, data?}; the
// error-kind to status-code mapping lives here and nowhere else.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func respondOK(c echo.Context, status int, message string, data any) error {
	body := echo.Map{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(status, body)
}

func respondErr(c echo.Context, status int, label, message string) error {
	return c.JSON(status, echo.Map{"success": false, "error": label, "message": message})
}

// respondValidation reports a 400 with one entry per violated rule.
func respondValidation(c echo.Context, reasons []string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"success": false,
		"error":   "Validation Error",
		"message": "please check your input data",
		"errors":  reasons,
	})
}
