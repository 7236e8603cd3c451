package api

import (
	"net/http"
	"net/url"
	"strings"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService  service.AuthService
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{authService: authService, cookieSecure: cookieSecure}
}

// --- Request/Response Structs ---

type CredentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Next     string `json:"next"`
}

type LoginResponse struct {
	Token    string       `json:"token"`
	User     *domain.User `json:"user"`
	Redirect string       `json:"redirect"`
}

type SignUpResponse struct {
	User                 *domain.User `json:"user"`
	Token                string       `json:"token,omitempty"`
	ConfirmationRequired bool         `json:"confirmationRequired"`
	Message              string       `json:"message,omitempty"`
}

type ConfirmRequest struct {
	Token string `json:"token" binding:"required"`
}

type ResendConfirmationRequest struct {
	Email string `json:"email" binding:"required"`
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a new user
// @Description Creates an account. When email confirmation is required no session is issued.
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body CredentialsRequest true "Registration details"
// @Success 201 {object} SignUpResponse "User created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 409 {object} gin.H "Conflict (email already exists)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	res, err := h.authService.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithServiceError(c, err, "register")
		return
	}

	resp := SignUpResponse{User: res.User, ConfirmationRequired: res.ConfirmationRequired}
	if res.ConfirmationRequired {
		resp.Message = "Check your email to confirm your account"
	} else {
		resp.Token = res.Token
		h.setSessionCookie(c, res.Token)
	}
	c.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary Log in a user
// @Description Authenticates a user, returns a JWT token and sets the session cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body CredentialsRequest true "Login credentials"
// @Success 200 {object} LoginResponse "Login successful"
// @Failure 401 {object} gin.H "Unauthorized (invalid credentials)"
// @Failure 403 {object} gin.H "Email not confirmed"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	token, user, err := h.authService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithServiceError(c, err, "log in")
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, LoginResponse{
		Token:    token,
		User:     user,
		Redirect: SafeRedirect(req.Next),
	})
}

func (h *AuthHandler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	token, user, err := h.authService.ConfirmEmail(c.Request.Context(), req.Token)
	if err != nil {
		abortWithServiceError(c, err, "confirm email")
		return
	}
	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, LoginResponse{Token: token, User: user, Redirect: "/"})
}

// ResendConfirmation godoc
// @Summary Send a new confirmation email
// @Description Always accepted; unknown or confirmed addresses get no email.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body ResendConfirmationRequest true "Account email"
// @Success 202 {object} gin.H
// @Failure 503 {object} gin.H "Email could not be sent"
// @Router /auth/confirm/resend [post]
func (h *AuthHandler) ResendConfirmation(c *gin.Context) {
	var req ResendConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if err := h.authService.ResendConfirmation(c.Request.Context(), req.Email); err != nil {
		abortWithServiceError(c, err, "resend confirmation")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "If the account is waiting for confirmation, a new email is on its way"})
}

// Logout revokes the presented token and clears the cookie. Sign-out
// failures are reported, not swallowed.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, err := bearerToken(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}
	if err := h.authService.SignOut(c.Request.Context(), token); err != nil {
		abortWithServiceError(c, err, "log out")
		return
	}
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"redirect": "/login"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	user, err := h.authService.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err, "load the current user")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(h.authService.TokenTTL().Seconds()), "/", "", h.cookieSecure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", h.cookieSecure, true)
}

// SafeRedirect returns next when it is a local path, otherwise "/".
func SafeRedirect(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	if u.Path == loginPath {
		return "/"
	}
	return next
}
