package controllers

import (
	"path"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/bantay-ph/bantay-api/internal/pkg/apperrors"
)

// mediaFolders are the blob store prefixes clients may upload into.
var mediaFolders = map[string]bool{
	"persons": true,
	"finders": true,
}

var mediaExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// HandleUploadMedia stores an image in the blob store and returns its
// {url, key} pair, which the client then attaches to a person or a finder
// report. The key is what deletion later uses.
func HandleUploadMedia(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}
	if !mediaExtensions[strings.ToLower(path.Ext(fileHeader.Filename))] {
		return jsonError(c, apperrors.E(apperrors.KindValidation,
			"unsupported file type %q, allowed: jpg, jpeg, png, webp", path.Ext(fileHeader.Filename)))
	}

	folder := c.FormValue("folder", "persons")
	if !mediaFolders[folder] {
		return jsonError(c, apperrors.E(apperrors.KindValidation,
			"unknown folder %q, allowed: persons, finders", folder))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return jsonError(c, apperrors.Wrap(apperrors.KindValidation, err, "unreadable upload"))
	}
	defer file.Close()

	result, err := mediaStore.Upload(c.Context(), file, folder, fileHeader.Filename)
	if err != nil {
		log.Errorf("[Media] upload failed: %v", err)
		return jsonError(c, apperrors.Wrap(apperrors.KindStorage, err, "upload failed"))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"url": result.URL,
		"key": result.Key,
	})
}
