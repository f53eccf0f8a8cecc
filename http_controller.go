package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// AuthController exposes password login and registration over JSON
type AuthController struct {
	Auther   Authenticator
	Registry IdentityStore
	Mapper   *FailureMapper
	Logger   Logger
}

// NewAuthController creates the controller with sane defaults
func NewAuthController(auther Authenticator, registry IdentityStore) *AuthController {
	return &AuthController{
		Auther:   auther,
		Registry: registry,
		Mapper:   NewFailureMapper(defLogger{}),
		Logger:   defLogger{},
	}
}

// RegisterRoutes registers the auth routes
func (a *AuthController) RegisterRoutes(group RouteRegistrar) {
	group.Post("/login", a.LoginPost)
	group.Post("/register", a.RegistrationCreate)
	group.Get("/me", a.CurrentPrincipal)
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Identifier, validation.Required, validation.Length(3, 100)),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		return a.Mapper.Respond(ctx, errors.Wrap(err, errors.CategoryBadInput, "failed to parse login payload").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.Mapper.Respond(ctx, err)
	}

	token, err := a.Auther.Login(ctx.Context(), payload.Identifier, payload.Password)
	if err != nil {
		return a.Mapper.Respond(ctx, err)
	}

	return ctx.JSON(router.StatusOK, map[string]string{
		"token": token,
	})
}

// RegistrationCreatePayload is the registration payload
type RegistrationCreatePayload struct {
	DisplayName     string `form:"display_name" json:"display_name"`
	Username        string `form:"username" json:"username"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DisplayName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Username, validation.Required, validation.Length(3, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) RegistrationCreate(ctx router.Context) error {
	payload := new(RegistrationCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register user parse payload", "error", err)
		return a.Mapper.Respond(ctx, errors.Wrap(err, errors.CategoryBadInput, "failed to parse registration payload").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register user validate payload", "error", err)
		return a.Mapper.Respond(ctx, err)
	}

	hash, err := HashPassword(payload.Password)
	if err != nil {
		return a.Mapper.Respond(ctx, err)
	}

	user := &User{
		DisplayName:  payload.DisplayName,
		Username:     payload.Username,
		Email:        payload.Email,
		PasswordHash: hash,
		Role:         DefaultRole(),
		Status:       UserStatusActive,
	}

	created, err := a.Registry.Create(ctx.Context(), user)
	if err != nil {
		return a.Mapper.Respond(ctx, err)
	}

	return ctx.JSON(router.StatusCreated, map[string]any{
		"id":           created.ID.String(),
		"username":     created.Username,
		"email":        created.Email,
		"display_name": created.DisplayName,
	})
}

// CurrentPrincipal echoes the caller identity populated by the JWT middleware
func (a *AuthController) CurrentPrincipal(ctx router.Context) error {
	principal, ok := PrincipalFromContext(ctx.Context())
	if !ok {
		return a.Mapper.Respond(ctx, ErrTokenMalformed)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"id":          principal.ID(),
		"username":    principal.Username(),
		"email":       principal.Email(),
		"authorities": principal.Authorities(),
	})
}

// ValidateStringEquals builds an ozzo rule asserting equality with want
func ValidateStringEquals(want string) validation.RuleFunc {
	return func(value any) error {
		got, _ := value.(string)
		if got != want {
			return errors.New("values do not match", errors.CategoryValidation)
		}
		return nil
	}
}
