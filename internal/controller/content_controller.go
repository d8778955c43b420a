package controller

import (
	"github.com/gofiber/fiber/v2"

	"clipfeed_backend/internal/middleware"
	"clipfeed_backend/internal/model"
	"clipfeed_backend/pkg/visibility"
)

type VideoInput struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Thumbnail      string `json:"thumbnail"`
	Mode           string `json:"mode"`
	VideoURL       string `json:"video_url"`
	SourceURL      string `json:"source_url"`
	PlaybackSecret string `json:"playback_secret"`
}

type StreamInput struct {
	Title       string `json:"title"`
	Mode        string `json:"mode"`
	PlaybackURL string `json:"playback_url"`
	IngestURL   string `json:"ingest_url"`
}

var (
	contentCatalog *visibility.Catalog
	gate           *visibility.Gate
	likeHistory    *visibility.LikeHistory
)

func InitContentController(catalog *visibility.Catalog, g *visibility.Gate, likes *visibility.LikeHistory) {
	contentCatalog = catalog
	gate = g
	likeHistory = likes
}

func parseMode(raw string) (model.Mode, error) {
	if raw == "" {
		return model.ModeDraft, nil
	}
	return model.ParseMode(raw)
}

func CreateVideo(c *fiber.Ctx) error {
	input := new(VideoInput)
	if err := c.BodyParser(input); err != nil || input.Title == "" {
		return badRequest(c, "title is required")
	}
	mode, err := parseMode(input.Mode)
	if err != nil {
		return badRequest(c, err.Error())
	}

	video := &model.Video{
		OwnerID:        middleware.RequesterID(c),
		Title:          input.Title,
		Description:    input.Description,
		Thumbnail:      input.Thumbnail,
		Mode:           mode,
		VideoURL:       input.VideoURL,
		SourceURL:      input.SourceURL,
		PlaybackSecret: input.PlaybackSecret,
	}
	if err := contentCatalog.CreateVideo(c.UserContext(), video); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create video",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(video)
}

func CreateStream(c *fiber.Ctx) error {
	input := new(StreamInput)
	if err := c.BodyParser(input); err != nil || input.Title == "" {
		return badRequest(c, "title is required")
	}
	mode, err := parseMode(input.Mode)
	if err != nil {
		return badRequest(c, err.Error())
	}

	stream := &model.Stream{
		OwnerID:     middleware.RequesterID(c),
		Title:       input.Title,
		Mode:        mode,
		PlaybackURL: input.PlaybackURL,
		IngestURL:   input.IngestURL,
	}
	if err := contentCatalog.CreateStream(c.UserContext(), stream); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create stream",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(stream)
}

// GetContent returns one video or stream as the requester is allowed to see it.
func GetContent(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "Invalid id")
	}

	ctx := c.UserContext()
	content, err := contentCatalog.Get(ctx, model.ContentKind(c.Params("kind")), uint(id))
	if err != nil {
		return errorResponse(c, err)
	}
	view, err := gate.Project(ctx, content, middleware.RequesterID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(view)
}

// ListOwnerContent lists an owner's videos and streams. Drafts only show up for the owner.
func ListOwnerContent(c *fiber.Ctx) error {
	ownerID, err := c.ParamsInt("id")
	if err != nil || ownerID <= 0 {
		return badRequest(c, "Invalid id")
	}

	ctx := c.UserContext()
	requester := middleware.RequesterID(c)

	videos, err := contentCatalog.VideosByOwner(ctx, uint(ownerID))
	if err != nil {
		return errorResponse(c, err)
	}
	streams, err := contentCatalog.StreamsByOwner(ctx, uint(ownerID))
	if err != nil {
		return errorResponse(c, err)
	}

	videoViews, err := gate.ProjectAll(ctx, videos, requester)
	if err != nil {
		return errorResponse(c, err)
	}
	streamViews, err := gate.ProjectAll(ctx, streams, requester)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"videos":  videoViews,
		"streams": streamViews,
	})
}

// LikeContent likes anything the requester can see.
func LikeContent(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest(c, "Invalid id")
	}

	ctx := c.UserContext()
	requester := middleware.RequesterID(c)
	kind := model.ContentKind(c.Params("kind"))

	content, err := contentCatalog.Get(ctx, kind, uint(id))
	if err != nil {
		return errorResponse(c, err)
	}
	if _, err := gate.Project(ctx, content, requester); err != nil {
		return errorResponse(c, err)
	}

	if c.Method() == fiber.MethodDelete {
		err = likeHistory.Unlike(ctx, requester, kind, uint(id))
	} else {
		err = likeHistory.Like(ctx, requester, kind, uint(id))
	}
	if err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
