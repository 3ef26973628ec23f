package models

// RegisterRequest is the signup payload
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Phone     string `json:"phone"`
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the signed bearer token
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// FundWalletRequest credits the wallet. Settlement against a payment
// gateway happens upstream; this endpoint records the confirmed deposit.
type FundWalletRequest struct {
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Reference string  `json:"reference"`
}
