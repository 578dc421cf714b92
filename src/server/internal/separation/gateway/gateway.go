package separationgateway

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/labstack/echo/v4"
	"github.com/veedubyou/stem-separator/src/server/internal/errors/api"
	"github.com/veedubyou/stem-separator/src/server/internal/errors/gateway"
	"github.com/veedubyou/stem-separator/src/server/internal/separation/usecase"
)

const uploadField = "file"

type Gateway struct {
	usecase separationusecase.Usecase
}

func NewGateway(usecase separationusecase.Usecase) Gateway {
	return Gateway{
		usecase: usecase,
	}
}

func (g Gateway) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, g.usecase.Health(c.Request().Context()))
}

func (g Gateway) Separate(c echo.Context) error {
	fileHeader, err := c.FormFile(uploadField)
	if err != nil {
		if g.hasEmptyFilePart(c) {
			apiErr := g.usecase.ValidateFileName("")
			return gateway.ErrorResponse(c, apiErr)
		}

		err = errors.Wrap(err, "Failed to read the uploaded file from the request")
		return gateway.ErrorResponse(c, g.usecase.RejectMissingFile(err))
	}

	if apiErr := g.usecase.ValidateFileName(fileHeader.Filename); apiErr != nil {
		return gateway.ErrorResponse(c, apiErr)
	}

	file, err := fileHeader.Open()
	if err != nil {
		err = errors.Wrap(err, "Failed to open the uploaded file")
		return gateway.ErrorResponse(c, g.usecase.RejectUnreadableUpload(err))
	}
	defer file.Close()

	result, apiErr := g.usecase.Separate(c.Request().Context(), fileHeader.Filename, file)
	if apiErr != nil {
		apiErr = api.WrapError(apiErr, "Failed to separate upload")
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.JSON(http.StatusOK, result)
}

func (g Gateway) Download(c echo.Context, jobID string, stem string) error {
	stemPath, resolvedStem, apiErr := g.usecase.LocateStem(jobID, stem)
	if apiErr != nil {
		apiErr = api.WrapError(apiErr, "Failed to locate stem for download")
		return gateway.ErrorResponse(c, apiErr)
	}

	return c.Attachment(stemPath, resolvedStem.FileName())
}

// a part named "file" with an empty filename is parsed as a plain form value
func (g Gateway) hasEmptyFilePart(c echo.Context) bool {
	form := c.Request().MultipartForm
	if form == nil {
		return false
	}

	_, ok := form.Value[uploadField]
	return ok
}
