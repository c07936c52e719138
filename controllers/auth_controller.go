package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"uptask/middleware"
	"uptask/models"
	"uptask/store"
	"uptask/utils"
)

type CreateAccountRequest struct {
	Name                 string `json:"name" validate:"required"`
	Email                string `json:"email" validate:"required,mailbox"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"`
}

type TokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,mailbox"`
	Password string `json:"password" validate:"required"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,mailbox"`
}

type NewPasswordRequest struct {
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,mailbox"`
}

type UpdatePasswordRequest struct {
	CurrentPassword      string `json:"current_password" validate:"required"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"eqfield=Password"`
}

type CheckPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

type AuthController struct {
	DB     *gorm.DB
	Tokens store.TokenStore
	Emails *utils.AuthEmail
	Logger *logrus.Entry
}

func NewAuthController(db *gorm.DB, tokens store.TokenStore, emails *utils.AuthEmail, logger *logrus.Entry) *AuthController {
	return &AuthController{
		DB:     db,
		Tokens: tokens,
		Emails: emails,
		Logger: logger,
	}
}

// CreateAccount registers an unconfirmed user and emails a confirmation code.
func (ac *AuthController) CreateAccount(c *fiber.Ctx) error {
	var req CreateAccountRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	email := models.NormalizeEmail(req.Email)

	db := ac.DB.WithContext(c.UserContext())

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return utils.Fail(c, utils.ErrConflict, "User already exists")
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return err
	}

	user := models.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Name:         req.Name,
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}

	code, err := ac.Tokens.Issue(c.UserContext(), user.ID)
	if err != nil {
		return err
	}

	ac.Emails.SendConfirmationEmail(recipient(&user), code)

	ac.Logger.WithField("user_id", user.ID).Info("account created")
	return utils.MessageResponse(c, "Account created, check your email to confirm it")
}

// ConfirmAccount redeems a confirmation code and marks its owner confirmed.
func (ac *AuthController) ConfirmAccount(c *fiber.Ctx) error {
	var req TokenRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	userID, err := ac.Tokens.Consume(c.UserContext(), req.Token)
	if errors.Is(err, store.ErrTokenNotFound) {
		return utils.Fail(c, utils.ErrNotFound, "Invalid token")
	}
	if err != nil {
		return err
	}

	res := ac.DB.WithContext(c.UserContext()).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("confirmed", true)
	if err := pairedWriteResult(res, "confirm account"); err != nil {
		ac.Logger.WithError(err).WithField("user_id", userID).Error("token consumed but user not confirmed")
		return err
	}

	return utils.MessageResponse(c, "Account confirmed")
}

// Login returns a session token. Unconfirmed users get a fresh confirmation
// code instead.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := ac.findUserByEmail(c, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.Fail(c, utils.ErrNotFound, "User not found")
	}
	if err != nil {
		return err
	}

	if !user.Confirmed {
		code, err := ac.Tokens.Issue(c.UserContext(), user.ID)
		if err != nil {
			return err
		}
		ac.Emails.SendConfirmationEmail(recipient(user), code)

		return utils.Fail(c, utils.ErrUnauthorized, "Account not confirmed, we sent you a new confirmation email")
	}

	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		return utils.Fail(c, utils.ErrUnauthorized, "Incorrect password")
	}

	token, err := utils.GenerateJWTToken(user.ID)
	if err != nil {
		return err
	}

	return c.SendString(token)
}

// RequestConfirmationCode sends a new confirmation code to an unconfirmed user.
func (ac *AuthController) RequestConfirmationCode(c *fiber.Ctx) error {
	var req EmailRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := ac.findUserByEmail(c, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.Fail(c, utils.ErrNotFound, "User is not registered")
	}
	if err != nil {
		return err
	}

	if user.Confirmed {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "User is already confirmed")
	}

	code, err := ac.Tokens.Issue(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	ac.Emails.SendConfirmationEmail(recipient(user), code)

	return utils.MessageResponse(c, "A new code was sent to your email")
}

// ForgotPassword emails a password reset code.
func (ac *AuthController) ForgotPassword(c *fiber.Ctx) error {
	var req EmailRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := ac.findUserByEmail(c, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.Fail(c, utils.ErrNotFound, "User is not registered")
	}
	if err != nil {
		return err
	}

	code, err := ac.Tokens.Issue(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	ac.Emails.SendPasswordResetToken(recipient(user), code)

	return utils.MessageResponse(c, "Check your email to reset your password")
}

// ValidateToken checks a reset code without consuming it.
func (ac *AuthController) ValidateToken(c *fiber.Ctx) error {
	var req TokenRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if _, err := ac.Tokens.Validate(c.UserContext(), req.Token); err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			return utils.Fail(c, utils.ErrNotFound, "Invalid token")
		}
		return err
	}

	return utils.MessageResponse(c, "Token is valid, set your new password")
}

// UpdatePasswordWithToken redeems a reset code and replaces the password.
func (ac *AuthController) UpdatePasswordWithToken(c *fiber.Ctx) error {
	var req NewPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return err
	}

	userID, err := ac.Tokens.Consume(c.UserContext(), c.Params("token"))
	if errors.Is(err, store.ErrTokenNotFound) {
		return utils.Fail(c, utils.ErrNotFound, "Invalid token")
	}
	if err != nil {
		return err
	}

	res := ac.DB.WithContext(c.UserContext()).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("password_hash", hashedPassword)
	if err := pairedWriteResult(res, "reset password"); err != nil {
		ac.Logger.WithError(err).WithField("user_id", userID).Error("token consumed but password not updated")
		return err
	}

	return utils.MessageResponse(c, "Password updated")
}

// GetCurrentUser returns the authenticated caller.
func (ac *AuthController) GetCurrentUser(c *fiber.Ctx) error {
	return c.JSON(middleware.ScopeFrom(c).User)
}

// UpdateProfile changes the caller's name and email.
func (ac *AuthController) UpdateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	caller := middleware.ScopeFrom(c).User
	email := models.NormalizeEmail(req.Email)

	db := ac.DB.WithContext(c.UserContext())

	var count int64
	if err := db.Model(&models.User{}).
		Where("email = ? AND id <> ?", email, caller.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return utils.Fail(c, utils.ErrConflict, "That email is already registered")
	}

	if err := db.Model(&models.User{}).
		Where("id = ?", caller.ID).
		Updates(map[string]interface{}{"name": req.Name, "email": email}).Error; err != nil {
		return err
	}

	return utils.MessageResponse(c, "Profile updated")
}

// UpdateCurrentUserPassword changes the caller's password after checking the
// current one.
func (ac *AuthController) UpdateCurrentUserPassword(c *fiber.Ctx) error {
	var req UpdatePasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := ac.loadCaller(c)
	if err != nil {
		return err
	}

	if !utils.CheckPassword(req.CurrentPassword, user.PasswordHash) {
		return utils.Fail(c, utils.ErrUnauthorized, "Current password is incorrect")
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return err
	}
	if err := ac.DB.WithContext(c.UserContext()).
		Model(user).
		Update("password_hash", hashedPassword).Error; err != nil {
		return err
	}

	return utils.MessageResponse(c, "Password updated")
}

// CheckPassword confirms the caller knows their password.
func (ac *AuthController) CheckPassword(c *fiber.Ctx) error {
	var req CheckPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := ac.loadCaller(c)
	if err != nil {
		return err
	}

	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		return utils.Fail(c, utils.ErrUnauthorized, "Incorrect password")
	}

	return utils.MessageResponse(c, "Password is correct")
}

func (ac *AuthController) findUserByEmail(c *fiber.Ctx, email string) (*models.User, error) {
	var user models.User
	err := ac.DB.WithContext(c.UserContext()).
		Where("email = ?", models.NormalizeEmail(email)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (ac *AuthController) loadCaller(c *fiber.Ctx) (*models.User, error) {
	var user models.User
	if err := ac.DB.WithContext(c.UserContext()).
		First(&user, middleware.ScopeFrom(c).User.ID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func recipient(user *models.User) utils.Recipient {
	return utils.Recipient{Email: user.Email, Name: user.Name}
}
