package models

type RegisterRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=6"`
	FullName string `json:"full_name" form:"full_name" binding:"required,min=3"`
	Phone    string `json:"phone" form:"phone" binding:"omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name" form:"full_name"`
	Phone    string `json:"phone" form:"phone"`
	Address  string `json:"address" form:"address"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required,len=6,numeric"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type AddCartItemRequest struct {
	StoreID string `json:"storeId" binding:"required"`
	ItemID  string `json:"itemId" binding:"required"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// PaymentInfo is the card form captured at checkout. It never leaves the
// process and is not persisted.
type PaymentInfo struct {
	CardNumber     string `json:"cardNumber" validate:"card_number"`
	ExpiryDate     string `json:"expiryDate" validate:"card_expiry"`
	CVV            string `json:"cvv" validate:"card_cvv"`
	CardholderName string `json:"cardholderName" validate:"cardholder"`
}

type CheckoutRequest struct {
	PaymentMethod string      `json:"paymentMethod" binding:"required,oneof=credit_card paypal apple_pay"`
	Card          PaymentInfo `json:"card"`
}

type LocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"required,min=-180,max=180"`
}

type DeliveryAddressRequest struct {
	Address string `json:"address" binding:"required,min=3"`
}
