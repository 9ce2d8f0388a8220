package auth

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// FieldError is a single inline-displayable validation failure.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates field errors for one form submission. It is
// raised client-side, before any request is made.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	messages := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		messages[i] = f.Message
	}
	return strings.Join(messages, "; ")
}

// Validator checks login and signup input against the platform's form
// rules, including the role-conditional requirements.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator with the custom rules registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("password_strength", passwordStrength)
	_ = v.RegisterValidation("person_name", personName)
	_ = v.RegisterValidation("phone_digits", phoneDigits)
	return &Validator{validate: v}
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type signupForm struct {
	FirstName             string `validate:"required,min=2,person_name"`
	LastName              string `validate:"required,min=2,person_name"`
	Email                 string `validate:"required,email"`
	Phone                 string `validate:"required,phone_digits"`
	Password              string `validate:"required,password_strength"`
	ConfirmPassword       string `validate:"required,eqfield=Password"`
	Role                  string `validate:"required,oneof=patient doctor admin insurance_provider"`
	MedicalLicenseNumber  string `validate:"required_if=Role doctor"`
	Specialty             string `validate:"required_if=Role doctor"`
	InsurancePolicyNumber string `validate:"required_if=Role patient"`
}

// ValidateLogin checks login credentials.
func (v *Validator) ValidateLogin(email, password string) error {
	return v.run(loginForm{Email: email, Password: password})
}

// ValidateSignup checks the signup form, confirmPassword included. The
// role-specific fields are only required for the roles that use them.
func (v *Validator) ValidateSignup(params SignupParams, confirmPassword string) error {
	return v.run(signupForm{
		FirstName:             params.FirstName,
		LastName:              params.LastName,
		Email:                 params.Email,
		Phone:                 params.Phone,
		Password:              params.Password,
		ConfirmPassword:       confirmPassword,
		Role:                  params.Role.String(),
		MedicalLicenseNumber:  params.MedicalLicenseNumber,
		Specialty:             params.Specialty,
		InsurancePolicyNumber: params.InsurancePolicyNumber,
	})
}

func (v *Validator) run(form any) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Message: messageFor(fe),
		})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "required_if":
		return fe.Field() + " is required for this role"
	case "email":
		return "Invalid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "person_name":
		return fe.Field() + " can only contain letters"
	case "phone_digits":
		return "Phone number must be 10 digits"
	case "password_strength":
		return "Password must be at least 8 characters and contain uppercase, lowercase, number and special character"
	case "eqfield":
		return "Passwords must match"
	case "oneof":
		return "Please select a role"
	}
	return fe.Field() + " is invalid"
}

func passwordStrength(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len(password) < 8 {
		return false
	}
	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasNumber = true
		case strings.ContainsRune("@$!%*?&", char):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSpecial
}

func personName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	for _, char := range name {
		if !unicode.IsLetter(char) && char != ' ' {
			return false
		}
	}
	return name != ""
}

func phoneDigits(fl validator.FieldLevel) bool {
	phone := fl.Field().String()
	if len(phone) != 10 {
		return false
	}
	for _, char := range phone {
		if char < '0' || char > '9' {
			return false
		}
	}
	return true
}
