package testing

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type PathParams map[string]string

func PrepareEchoContext(request *http.Request, response http.ResponseWriter) echo.Context {
	e := echo.New()
	return e.NewContext(request, response)
}

func PrepareEchoContextWithParams(request *http.Request, response http.ResponseWriter, params PathParams) echo.Context {
	c := PrepareEchoContext(request, response)

	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for name, value := range params {
		names = append(names, name)
		values = append(values, value)
	}

	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c
}
