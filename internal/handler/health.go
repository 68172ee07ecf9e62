package handler // declare the package name; contains HTTP handlers

import (
	"net/http" // net/http provides status codes and response helpers

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// rootMessage is returned by the root endpoint.
const rootMessage = "Spiritual Plant Catalog API running"

// Health is a simple liveness endpoint used by load balancers and monitoring
// systems.  It returns a plain text "ok" with status 200 and never touches
// the database; use /test for connectivity details.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Root answers GET / with a short banner so clients can tell the API is up.
func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": rootMessage})
}
