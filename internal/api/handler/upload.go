package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lusail/account-service/internal/core/ports"
)

// ProfilePicField is the multipart field carrying the profile image.
const ProfilePicField = "profilePic"

// formImage opens the optional profile image. The returned close func is never nil.
func formImage(c echo.Context) (*ports.ImageUpload, func(), error) {
	noop := func() {}

	fh, err := c.FormFile(ProfilePicField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, echo.NewHTTPError(http.StatusBadRequest, "invalid profile picture upload")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, echo.NewHTTPError(http.StatusBadRequest, "invalid profile picture upload")
	}

	return &ports.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
