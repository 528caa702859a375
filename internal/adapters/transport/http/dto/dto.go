package dto

type RegisterDTO struct {
	Email     string `json:"email"    validate:"required,email"`
	Password  string `json:"password" validate:"required,strongpwd"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name"  validate:"max=150"`
}

type VerifyCodeDTO struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code"  validate:"required,len=6"`
}

type ResendCodeDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type LoginDTO struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshDTO struct {
	RefreshToken string `json:"refresh" validate:"required"`
}

type CreateChatDTO struct {
	User2 string `json:"user2" validate:"required,email"`
}

type PostMessageDTO struct {
	Content string `json:"content" validate:"required"`
}

type UpdateMessageDTO struct {
	Content string `json:"content" validate:"required"`
}
