package domain

import (
	"errors"
)

var (
	MessageSuccessRegister       = "user registered successfully"
	MessageSuccessLogin          = "login success"
	MessageSuccessGetMe          = "success get current user"
	MessageSuccessGetUsers       = "success get users"
	MessageSuccessGetUserDetail  = "success get user detail"
	MessageSuccessChangePassword = "password changed successfully"
	MessageSuccessForgotPassword = "reset password email sent"
	MessageSuccessResetPassword  = "password reset successfully"

	MessageFailedRegister       = "failed to register user"
	MessageFailedLogin          = "failed to login"
	MessageFailedGetMe          = "failed to get current user"
	MessageFailedGetUsers       = "failed to get users"
	MessageFailedGetUserDetail  = "failed to get user detail"
	MessageFailedChangePassword = "failed to change password"
	MessageFailedForgotPassword = "failed to send reset password email"
	MessageFailedResetPassword  = "failed to reset password"

	ErrUserNotFound          = errors.New("user not found")
	ErrEmailAlreadyExists    = errors.New("email already registered")
	ErrUsernameAlreadyExists = errors.New("username already taken")
	ErrUsernameReserved      = errors.New("username \"me\" is not allowed")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrWrongPassword         = errors.New("current password is incorrect")
)

type (
	RegisterRequest struct {
		Email     string `json:"email" validate:"required,email"`
		Username  string `json:"username" validate:"required,max=150"`
		FirstName string `json:"first_name" validate:"required,max=150"`
		LastName  string `json:"last_name" validate:"required,max=150"`
		Password  string `json:"password" validate:"required,min=8,max=150"`
	}

	RegisterResponse struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"auth_token"`
	}

	UserResponse struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		Username     string `json:"username"`
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		IsSubscribed bool   `json:"is_subscribed"`
	}

	ChangePasswordRequest struct {
		NewPassword     string `json:"new_password" validate:"required,min=8,max=150"`
		CurrentPassword string `json:"current_password" validate:"required"`
	}

	ForgotPasswordRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	ResetPasswordRequest struct {
		Token       string `json:"token" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,min=8,max=150"`
	}
)
