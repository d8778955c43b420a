package controller

import (
	"github.com/gofiber/fiber/v2"

	"clipfeed_backend/internal/middleware"
	"clipfeed_backend/internal/model"
	"clipfeed_backend/pkg/subscription"
)

type JoinInput struct {
	OwnerID   uint `json:"owner_id"`
	PackageID uint `json:"package_id"`
}

type UpgradeInput struct {
	PackageID uint `json:"package_id"`
}

var (
	packageCatalog *subscription.Catalog
	engine         *subscription.Engine
)

func InitSubscriptionController(catalog *subscription.Catalog, e *subscription.Engine) {
	packageCatalog = catalog
	engine = e
}

// ListPackages returns the active catalog. ?kind=vip switches from membership packages.
func ListPackages(c *fiber.Ctx) error {
	kind := model.PackageKind(c.Query("kind", string(model.PackageMembership)))
	if kind != model.PackageMembership && kind != model.PackageVip {
		return badRequest(c, "Unknown package kind")
	}

	pkgs, err := packageCatalog.List(c.UserContext(), kind)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch packages",
		})
	}
	return c.JSON(pkgs)
}

func JoinMembership(c *fiber.Ctx) error {
	input := new(JoinInput)
	if err := c.BodyParser(input); err != nil || input.OwnerID == 0 || input.PackageID == 0 {
		return badRequest(c, "owner_id and package_id are required")
	}

	rec, err := engine.Join(c.UserContext(), middleware.RequesterID(c), input.OwnerID, input.PackageID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func UpgradeVip(c *fiber.Ctx) error {
	input := new(UpgradeInput)
	if err := c.BodyParser(input); err != nil || input.PackageID == 0 {
		return badRequest(c, "package_id is required")
	}

	rec, err := engine.Upgrade(c.UserContext(), middleware.RequesterID(c), input.PackageID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

func GetMyVip(c *fiber.Ctx) error {
	rec, err := engine.Vip(c.UserContext(), middleware.RequesterID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(rec)
}

func GetMyMemberships(c *fiber.Ctx) error {
	recs, err := engine.Memberships(c.UserContext(), middleware.RequesterID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(recs)
}
