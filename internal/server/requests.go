package server

import (
	"inkpost/internal/models"
	accountrules "inkpost/internal/validation"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var postStatuses = []interface{}{
	string(models.PostStatusDraft),
	string(models.PostStatusPublished),
	string(models.PostStatusArchived),
}

// stringRule adapts a plain string check to an ozzo rule.
func stringRule(check func(string) error) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		return check(s)
	})
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Avatar    string `json:"avatar"`
}

func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, stringRule(accountrules.ValidateUsername)),
		validation.Field(&r.Email, validation.Required, stringRule(accountrules.ValidateEmail)),
		validation.Field(&r.Password, validation.Required, stringRule(accountrules.ValidatePassword)),
		validation.Field(&r.FirstName, validation.RuneLength(0, 50)),
		validation.Field(&r.LastName, validation.RuneLength(0, 50)),
		validation.Field(&r.Bio, validation.RuneLength(0, 500)),
		validation.Field(&r.Avatar, validation.RuneLength(0, 255), is.RequestURI),
	)
}

func (r registerRequest) profile() models.Profile {
	return models.Profile{FirstName: r.FirstName, LastName: r.LastName, Bio: r.Bio, Avatar: r.Avatar}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type profileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Avatar    string `json:"avatar"`
}

func (r profileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.RuneLength(0, 50)),
		validation.Field(&r.LastName, validation.RuneLength(0, 50)),
		validation.Field(&r.Bio, validation.RuneLength(0, 500)),
		validation.Field(&r.Avatar, validation.RuneLength(0, 255), is.RequestURI),
	)
}

func (r profileRequest) profile() models.Profile {
	return models.Profile{FirstName: r.FirstName, LastName: r.LastName, Bio: r.Bio, Avatar: r.Avatar}
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r passwordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, stringRule(accountrules.ValidatePassword)),
	)
}

type createPostRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	CategoryID uint   `json:"category_id"`
	Status     string `json:"status"`
}

func (r createPostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(3, 100)),
		validation.Field(&r.Content, validation.Required, validation.RuneLength(10, 0)),
		validation.Field(&r.CategoryID, validation.Required),
		validation.Field(&r.Status, validation.In(postStatuses...)),
	)
}

type updatePostRequest struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	CategoryID *uint   `json:"category_id"`
	Status     *string `json:"status"`
}

func (r updatePostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.RuneLength(3, 100)),
		validation.Field(&r.Content, validation.NilOrNotEmpty, validation.RuneLength(10, 0)),
		validation.Field(&r.CategoryID, validation.NilOrNotEmpty),
		validation.Field(&r.Status, validation.NilOrNotEmpty, validation.In(postStatuses...)),
	)
}

type commentRequest struct {
	Content string `json:"content"`
}

func (r commentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required, validation.RuneLength(1, 500)),
	)
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

func (r categoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.RuneLength(2, 50)),
		validation.Field(&r.Description, validation.RuneLength(0, 200)),
	)
}

type categoryUpdateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

func (r categoryUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.RuneLength(2, 50)),
		validation.Field(&r.Description, validation.RuneLength(0, 200)),
	)
}

type roleRequest struct {
	Role string `json:"role"`
}

func (r roleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Role, validation.Required, validation.In(string(models.RoleUser), string(models.RoleAdmin))),
	)
}

type activeRequest struct {
	Active *bool `json:"active"`
}

func (r activeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Active, validation.NotNil),
	)
}
