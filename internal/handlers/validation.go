package handlers

import (
	"errors"
	"fmt"

	"github.com/agrienergy/agri-produce/internal/services"
	"github.com/go-playground/validator/v10"
)

var fieldLabels = map[string]string{
	"Email":           "Email",
	"Password":        "Password",
	"ConfirmPassword": "Confirm password",
	"FullName":        "Full name",
	"Name":            "Product name",
	"Category":        "Category",
	"ProductionDate":  "Production date",
}

func label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

// bindingMessages turns gin binding failures into form messages.
func bindingMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"The submitted form could not be read."}
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := label(fe.Field())
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("The %s field is required.", name))
		case "email":
			messages = append(messages, fmt.Sprintf("The %s field is not a valid e-mail address.", name))
		case "max":
			messages = append(messages, fmt.Sprintf("The %s field cannot exceed %s characters.", name, fe.Param()))
		case "eqfield":
			messages = append(messages, "The password and confirmation password do not match.")
		default:
			messages = append(messages, fmt.Sprintf("The %s field is invalid.", name))
		}
	}
	return messages
}

func serviceMessages(err error) ([]string, bool) {
	var verrs services.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs.Messages(), true
	}
	return nil, false
}
