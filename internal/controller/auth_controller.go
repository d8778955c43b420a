package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"clipfeed_backend/internal/middleware"
	"clipfeed_backend/internal/model"
	"clipfeed_backend/pkg/utils/jwt"
)

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

var authDB *gorm.DB

func InitAuthController(db *gorm.DB) {
	authDB = db
}

// Register creates an account with an empty wallet.
func Register(c *fiber.Ctx) error {
	input := new(RegisterInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Invalid input")
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if !strings.Contains(input.Email, "@") || len(input.Password) < 6 {
		return badRequest(c, "Email and a password of at least 6 characters are required")
	}

	var existing model.Account
	err := authDB.Unscoped().Where("email = ?", input.Email).First(&existing).Error
	if err == nil {
		return badRequest(c, "Email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not check email",
		})
	}

	username := input.Username
	if username == "" {
		username = model.GenerateUsername(input.Email)
	}
	var taken int64
	if err := authDB.Unscoped().Model(&model.Account{}).Where("username = ?", username).Count(&taken).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not check username",
		})
	}
	if taken > 0 {
		return badRequest(c, "Username already taken")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not hash password",
		})
	}

	account := model.Account{
		Email:    input.Email,
		Username: username,
		Password: string(hashedPassword),
	}
	if err := authDB.Create(&account).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create account",
		})
	}

	token, err := jwt.GenerateToken(account.ID, account.Email, account.Username)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not generate token",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful",
		"token":   token,
		"user":    account.GetPublicProfile(),
	})
}

func Login(c *fiber.Ctx) error {
	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Invalid input")
	}

	var account model.Account
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := authDB.Where("email = ?", email).First(&account).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(input.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid credentials",
		})
	}

	token, err := jwt.GenerateToken(account.ID, account.Email, account.Username)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not generate token",
		})
	}

	entry := model.LoginHistory{
		AccountID: account.ID,
		Device:    truncate(c.Get(fiber.HeaderUserAgent), 255),
		IP:        c.IP(),
	}
	if err := authDB.Create(&entry).Error; err != nil {
		log.Printf("Could not record login for account %d: %v", account.ID, err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  account.GetPublicProfile(),
	})
}

// GetMe returns the logged in account, wallet included.
func GetMe(c *fiber.Ctx) error {
	var account model.Account
	if err := authDB.First(&account, middleware.RequesterID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch user",
		})
	}
	return c.JSON(account)
}

// GetLoginHistory lists the most recent logins of the current account.
func GetLoginHistory(c *fiber.Ctx) error {
	var entries []model.LoginHistory
	err := authDB.Where("account_id = ?", middleware.RequesterID(c)).
		Order("created_at desc").
		Limit(20).
		Find(&entries).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch login history",
		})
	}
	return c.JSON(entries)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
