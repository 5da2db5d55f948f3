package users

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,min=10,max=15"`
	Address  string `json:"address" validate:"max=500"`
	GSTIN    string `json:"gstin" validate:"omitempty,len=15"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
	GSTIN   *string `json:"gstin,omitempty" validate:"omitempty,len=15"`
}

type ListUsersRequest struct {
	Blocked *bool  `json:"blocked,omitempty"`
	Search  string `json:"search,omitempty" validate:"max=120"`
	Limit   int    `json:"limit" validate:"gte=0,lte=200"`
	Offset  int    `json:"offset" validate:"gte=0"`
}
