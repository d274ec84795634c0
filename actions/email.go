package actions

// EmailAction offers a mailto link for a disclosed email address.
type EmailAction struct {
	value string
}

func NewEmailAction(value string) *EmailAction {
	return &EmailAction{value: value}
}

func (a *EmailAction) Title() string {
	return "Mail " + a.value
}

func (a *EmailAction) Priority() int {
	return 20
}

func (a *EmailAction) Icon() string {
	return "icon-mail"
}

func (a *EmailAction) Target() string {
	return "mailto:" + a.value
}
